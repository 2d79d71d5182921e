package chunker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/logging"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Splitter writes part files into work directories on a billy filesystem.
type Splitter struct {
	fs  billy.Filesystem
	log logging.Logger
}

func NewSplitter(fs billy.Filesystem, log logging.Logger) *Splitter {
	return &Splitter{fs: fs, log: log}
}

// WorkDirName derives the work directory for src from its absolute path so
// concurrent uploads of different files never share a directory.
func WorkDirName(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrIO, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return "upload-" + hex.EncodeToString(sum[:16]), nil
}

func partFileName(index int) string {
	return fmt.Sprintf("part_%d.bin", index)
}

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrIO, op, err)
}

// Split streams src into parts of chunkSize bytes (the last may be shorter).
// Any previous content of the work directory is removed first. On failure the
// directory is left in place for Cleanup.
func (s *Splitter) Split(ctx context.Context, src string, chunkSize int64) (*models.Manifest, error) {
	if chunkSize <= 0 || chunkSize%treehash.LeafSize != 0 {
		return nil, fmt.Errorf("%w: chunk size %d is not a positive multiple of %d",
			common.ErrInvalidSize, chunkSize, treehash.LeafSize)
	}

	dir, err := WorkDirName(src)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(src)
	if err != nil {
		return nil, ioErr("open source", err)
	}
	defer in.Close()

	if err := util.RemoveAll(s.fs, dir); err != nil {
		return nil, ioErr("clear work dir", err)
	}
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return nil, ioErr("create work dir", err)
	}

	m := &models.Manifest{Source: src, ChunkSize: chunkSize, Dir: dir}
	buf := make([]byte, treehash.LeafSize)

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		part, err := s.writePart(in, buf, dir, index, chunkSize)
		if err != nil {
			return nil, err
		}
		if part == nil {
			break
		}

		part.Offset = m.Size
		m.Size += part.Length
		m.Parts = append(m.Parts, *part)

		s.log.Debug(ctx, "part written", "index", index, "size", humanize.IBytes(uint64(part.Length)))
	}

	if m.Size == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrEmptyArchive, src)
	}

	if err := writeManifest(s.fs, m); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "archive split",
		"source", src,
		"size", humanize.IBytes(uint64(m.Size)),
		"chunk_size", humanize.IBytes(uint64(chunkSize)),
		"parts", len(m.Parts),
	)

	return m, nil
}

// writePart copies up to chunkSize bytes from in into a new part file, one
// leaf-sized window at a time. It returns nil when in is already exhausted.
func (s *Splitter) writePart(in io.Reader, buf []byte, dir string, index int, chunkSize int64) (*models.Part, error) {
	n, eof, err := readWindow(in, buf)
	if err != nil {
		return nil, ioErr("read source", err)
	}
	if n == 0 {
		return nil, nil
	}

	name := partFileName(index)
	f, err := s.fs.Create(s.fs.Join(dir, name))
	if err != nil {
		return nil, ioErr("create part", err)
	}
	defer f.Close()

	part := &models.Part{Index: index, File: name}
	whole := sha256.New()

	for {
		window := buf[:n]
		if _, err := f.Write(window); err != nil {
			return nil, ioErr("write part", err)
		}
		whole.Write(window)
		part.SubDigests = append(part.SubDigests, treehash.Sum(window))
		part.Length += int64(n)

		if eof || part.Length == chunkSize {
			break
		}

		n, eof, err = readWindow(in, buf)
		if err != nil {
			return nil, ioErr("read source", err)
		}
		if n == 0 {
			break
		}
	}

	part.Digest = treehash.Digest(whole.Sum(nil))

	if err := f.Close(); err != nil {
		return nil, ioErr("close part", err)
	}
	return part, nil
}

// readWindow fills buf from r. eof is true once r has no more data after
// this window.
func readWindow(r io.Reader, buf []byte) (int, bool, error) {
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return n, false, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return n, true, nil
	default:
		return n, false, err
	}
}

// Open opens a part file of a split archive for reading.
func (s *Splitter) Open(m *models.Manifest, p models.Part) (billy.File, error) {
	f, err := s.fs.Open(s.fs.Join(m.Dir, p.File))
	if err != nil {
		return nil, ioErr("open part", err)
	}
	return f, nil
}

// Load reads the manifest stored in a work directory.
func (s *Splitter) Load(dir string) (*models.Manifest, error) {
	return LoadManifest(s.fs, dir)
}

// Cleanup removes a work directory and everything in it.
func (s *Splitter) Cleanup(dir string) error {
	if err := util.RemoveAll(s.fs, dir); err != nil {
		return ioErr("remove work dir", err)
	}
	return nil
}

func writeManifest(fs billy.Filesystem, m *models.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := util.WriteFile(fs, fs.Join(m.Dir, models.ManifestFile), data, 0o600); err != nil {
		return ioErr("write manifest", err)
	}
	return nil
}

// LoadManifest reads the manifest in dir and checks that its parts are
// contiguous and in index order.
func LoadManifest(fs billy.Filesystem, dir string) (*models.Manifest, error) {
	f, err := fs.Open(fs.Join(dir, models.ManifestFile))
	if err != nil {
		return nil, ioErr("open manifest", err)
	}
	defer f.Close()

	var m models.Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	m.Dir = dir

	var offset int64
	for i, p := range m.Parts {
		if p.Index != i || p.Offset != offset {
			return nil, fmt.Errorf("manifest %s: part %d out of order", dir, i)
		}
		offset += p.Length
	}
	if offset != m.Size {
		return nil, fmt.Errorf("manifest %s: parts cover %d of %d bytes", dir, offset, m.Size)
	}

	return &m, nil
}
