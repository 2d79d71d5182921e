// Package chunker prepares an archive for multipart upload.
//
// PlanChunkSize picks the part size, and Splitter streams the source file into
// part files inside a per-upload work directory, recording each part's
// SHA-256 and its 1 MiB tree hash leaves in a manifest. The manifest, not the
// part file names, defines part order.
package chunker
