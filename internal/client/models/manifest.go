package models

import "github.com/dmitrijs2005/coldvault/internal/treehash"

// ManifestFile is the name of the manifest written next to the part files.
const ManifestFile = "manifest.json"

// Part is one contiguous slice of the source archive stored as its own file
// in the upload work directory.
type Part struct {
	Index  int    `json:"index"`
	Offset int64  `json:"offset"`
	Length int64  `json:"length"`
	File   string `json:"file"`

	// Digest is the SHA-256 of the raw part bytes.
	Digest treehash.Digest `json:"digest"`
	// SubDigests holds one digest per 1 MiB of the part's actual bytes.
	SubDigests []treehash.Digest `json:"sub_digests"`
}

// End is the offset of the last byte of the part.
func (p Part) End() int64 {
	return p.Offset + p.Length - 1
}

// Manifest describes a split archive. Parts are stored in index order.
type Manifest struct {
	Source    string `json:"source"`
	Size      int64  `json:"size"`
	ChunkSize int64  `json:"chunk_size"`
	Parts     []Part `json:"parts"`

	// Dir is the work directory the manifest was loaded from; not persisted.
	Dir string `json:"-"`
}

// Leaves returns all parts' sub-digests flattened in archive order.
func (m *Manifest) Leaves() []treehash.Digest {
	var out []treehash.Digest
	for _, p := range m.Parts {
		out = append(out, p.SubDigests...)
	}
	return out
}

// TreeHash reduces the manifest's leaves into the whole-archive checksum.
func (m *Manifest) TreeHash() (treehash.Digest, error) {
	return treehash.Reduce(m.Leaves())
}
