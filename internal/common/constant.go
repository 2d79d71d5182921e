// Package common contains shared constants and sentinel errors used across
// coldvault components.
package common

const (
	// MiB is the tree hash leaf size and the smallest allowed part size.
	MiB int64 = 1 << 20

	// GiB is used for the largest allowed part size.
	GiB int64 = 1 << 30

	// MaxPartCount is the service limit on parts per multipart upload.
	MaxPartCount int64 = 10000

	// AccountID tells the service to use the account that signed the request.
	AccountID = "-"
)
