package treehash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/dmitrijs2005/coldvault/internal/common"
)

// LeafSize is the number of input bytes covered by one leaf digest.
const LeafSize = common.MiB

// Digest is a SHA-256 value.
type Digest [sha256.Size]byte

// Sum returns the SHA-256 digest of b.
func Sum(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// ParseDigest decodes a 64 character hex string.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("parse digest: %w", err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("parse digest: want %d bytes, got %d", len(d), len(b))
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Reduce folds leaf digests into the tree hash. A single leaf is returned
// unchanged; no leaves yields common.ErrEmptyArchive. The input slice is not
// modified.
func Reduce(leaves []Digest) (Digest, error) {
	if len(leaves) == 0 {
		return Digest{}, common.ErrEmptyArchive
	}

	level := append([]Digest(nil), leaves...)
	var pair [2 * sha256.Size]byte

	for len(level) > 1 {
		next := make([]Digest, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			copy(pair[:sha256.Size], level[i][:])
			copy(pair[sha256.Size:], level[i+1][:])
			next = append(next, Sum(pair[:]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}

	return level[0], nil
}

// Rounds reports how many reduction levels Reduce performs for n leaves.
func Rounds(n int) int {
	rounds := 0
	for n > 1 {
		n = (n + 1) / 2
		rounds++
	}
	return rounds
}

// Hasher is an io.Writer that records one leaf digest per LeafSize bytes
// written. The zero value is not usable; call New.
type Hasher struct {
	cur    hash.Hash
	filled int64
	leaves []Digest
}

func New() *Hasher {
	return &Hasher{cur: sha256.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		room := LeafSize - h.filled
		chunk := p
		if int64(len(chunk)) > room {
			chunk = p[:room]
		}

		h.cur.Write(chunk)
		h.filled += int64(len(chunk))
		written += len(chunk)
		p = p[len(chunk):]

		if h.filled == LeafSize {
			h.leaves = append(h.leaves, Digest(h.cur.Sum(nil)))
			h.cur.Reset()
			h.filled = 0
		}
	}
	return written, nil
}

// Leaves returns the leaf digests so far, including a trailing partial leaf.
// Further writes continue the partial leaf.
func (h *Hasher) Leaves() []Digest {
	out := append([]Digest(nil), h.leaves...)
	if h.filled > 0 {
		out = append(out, Digest(h.cur.Sum(nil)))
	}
	return out
}

// Sum reduces everything written so far.
func (h *Hasher) Sum() (Digest, error) {
	return Reduce(h.Leaves())
}

// Of computes the tree hash of everything read from r.
func Of(r io.Reader) (Digest, error) {
	h := New()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, fmt.Errorf("%w: %w", common.ErrIO, err)
	}
	return h.Sum()
}
