package services

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/coldvault/internal/client/chunker"
	"github.com/dmitrijs2005/coldvault/internal/client/client"
	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/logging"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
	"github.com/dustin/go-humanize"
)

// UploadService pushes split archives to a vault as multipart uploads.
//
// Contract:
//   - Upload: send an already split work directory, parts strictly in
//     manifest order, then complete with the whole-archive tree hash.
//   - UploadFile: plan, split, Upload and clean up the work directory.
type UploadService interface {
	Upload(ctx context.Context, vault, description, dir string) (*client.ArchiveReceipt, error)
	UploadFile(ctx context.Context, src, vault, description string) (*client.ArchiveReceipt, error)
}

type uploadService struct {
	client   client.Client
	splitter *chunker.Splitter
	log      logging.Logger

	abortOnPartFailure bool
}

// NewUploadService builds an UploadService. With abortOnPartFailure set the
// first failed part aborts the whole upload; otherwise failures are logged
// and the completion call decides.
func NewUploadService(c client.Client, splitter *chunker.Splitter, log logging.Logger, abortOnPartFailure bool) UploadService {
	return &uploadService{client: c, splitter: splitter, log: log, abortOnPartFailure: abortOnPartFailure}
}

func (s *uploadService) UploadFile(ctx context.Context, src, vault, description string) (*client.ArchiveReceipt, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", common.ErrIO, src, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrIO, src)
	}

	chunkSize, err := chunker.PlanChunkSize(fi.Size())
	if err != nil {
		return nil, err
	}

	m, err := s.splitter.Split(ctx, src, chunkSize)
	if err != nil {
		if dir, derr := chunker.WorkDirName(src); derr == nil {
			_ = s.splitter.Cleanup(dir)
		}
		return nil, err
	}
	defer func() {
		if err := s.splitter.Cleanup(m.Dir); err != nil {
			s.log.Warn(ctx, "work directory left behind", "dir", m.Dir, "error", err)
		}
	}()

	if description == "" {
		description = fi.Name()
	}

	return s.Upload(ctx, vault, description, m.Dir)
}

func (s *uploadService) Upload(ctx context.Context, vault, description, dir string) (*client.ArchiveReceipt, error) {
	m, err := s.splitter.Load(dir)
	if err != nil {
		return nil, err
	}

	treeHash, err := m.TreeHash()
	if err != nil {
		return nil, err
	}

	h, err := s.client.InitiateMultipartUpload(ctx, vault, description, m.ChunkSize)
	if err != nil {
		return nil, err
	}

	log := s.log.With("vault", vault, "upload_id", h.UploadID)
	log.Info(ctx, "upload initiated",
		"size", humanize.IBytes(uint64(m.Size)),
		"part_size", humanize.IBytes(uint64(m.ChunkSize)),
		"parts", len(m.Parts))

	failed := 0
	for _, p := range m.Parts {
		if err := ctx.Err(); err != nil {
			s.abort(ctx, log, h)
			return nil, err
		}

		rng, err := s.uploadPart(ctx, h, m, p)
		if err != nil {
			failed++
			log.Error(ctx, "part upload failed", "index", p.Index, "range", rng, "error", err)

			if s.abortOnPartFailure {
				s.abort(ctx, log, h)
				return nil, fmt.Errorf("%w: part %d: %w", common.ErrUploadIncomplete, p.Index, err)
			}
			continue
		}

		log.Debug(ctx, "part uploaded", "index", p.Index, "range", rng)
	}

	receipt, err := s.client.CompleteMultipartUpload(ctx, h, m.Size, treeHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %d of %d parts failed: %w", common.ErrUploadIncomplete, failed, len(m.Parts), err)
	}

	log.Info(ctx, "upload complete", "archive_id", receipt.ArchiveID, "tree_hash", treeHash)
	return receipt, nil
}

// uploadPart sends one part. The range is derived from the part index and the
// upload's chunk size, never from the file name.
func (s *uploadService) uploadPart(ctx context.Context, h *client.UploadHandle, m *models.Manifest, p models.Part) (client.ByteRange, error) {
	start := int64(p.Index) * m.ChunkSize
	rng := client.ByteRange{Start: start, End: start + p.Length - 1}

	checksum, err := treehash.Reduce(p.SubDigests)
	if err != nil {
		return rng, err
	}

	f, err := s.splitter.Open(m, p)
	if err != nil {
		return rng, err
	}
	defer f.Close()

	got, err := s.client.UploadPart(ctx, h, rng, checksum, f)
	if err != nil {
		return rng, err
	}
	if got != "" && got != checksum.String() {
		s.log.Warn(ctx, "service reported a different part checksum",
			"index", p.Index, "sent", checksum, "received", got)
	}

	return rng, nil
}

func (s *uploadService) abort(ctx context.Context, log logging.Logger, h *client.UploadHandle) {
	// the caller's context may already be done
	if err := s.client.AbortMultipartUpload(context.WithoutCancel(ctx), h); err != nil {
		log.Warn(ctx, "abort failed", "error", err)
		return
	}
	log.Info(ctx, "upload aborted")
}
