// Package treehash implements the SHA-256 tree hash the archive service uses
// as its whole-archive and per-part checksum.
//
// The input is split into 1 MiB leaves (the final leaf may be shorter) and
// each leaf is hashed with SHA-256. Leaves are then reduced level by level:
// adjacent digests are paired left to right and each pair is replaced by
// SHA256(left || right) over the raw 32-byte values. An unpaired trailing
// digest is carried to the next level unchanged, after the new parents.
// The reduction stops when one digest remains.
//
// For leaves [a b c]:
//
//	level 1: [H(a||b) c]
//	level 2: [H(H(a||b)||c)]
//
// Digests are exchanged with the service as lowercase hex.
package treehash
