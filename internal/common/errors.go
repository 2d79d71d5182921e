// Package common defines shared constants and sentinel errors used across
// coldvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Upload planning errors.
	ErrArchiveTooLarge = errors.New("archive too large")
	ErrEmptyArchive    = errors.New("empty archive")
	ErrInvalidSize     = errors.New("invalid size")

	// Local disk errors.
	ErrIO = errors.New("io error")

	// Any failed call to the archive service.
	ErrService = errors.New("service error")

	// Completion was rejected, usually because a part failed earlier.
	ErrUploadIncomplete = errors.New("upload incomplete")

	// Job bookkeeping errors.
	ErrMalformedLocation = errors.New("malformed location")
	ErrLedgerCorrupt     = errors.New("ledger corrupt")

	// Inventory lookups.
	ErrArchiveNotFound = errors.New("archive not found")
	ErrNoInventory     = errors.New("no local inventory")

	// Downloaded job output did not match the service's tree hash.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
