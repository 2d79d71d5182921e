package client

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
)

// Client is the archive service as seen by coldvault.
type Client interface {
	InitiateMultipartUpload(ctx context.Context, vault, description string, partSize int64) (*UploadHandle, error)
	UploadPart(ctx context.Context, h *UploadHandle, rng ByteRange, checksum treehash.Digest, body io.ReadSeeker) (string, error)
	CompleteMultipartUpload(ctx context.Context, h *UploadHandle, size int64, treeHash treehash.Digest) (*ArchiveReceipt, error)
	AbortMultipartUpload(ctx context.Context, h *UploadHandle) error

	InitiateJob(ctx context.Context, vault string, spec JobSpec) (*JobHandle, error)
	DescribeJob(ctx context.Context, vault, jobID string) (*JobStatus, error)
	GetJobOutput(ctx context.Context, vault, jobID string) (*JobOutput, error)

	CreateVault(ctx context.Context, vault string) (string, error)
	ListVaults(ctx context.Context) ([]VaultSummary, error)
	DeleteArchive(ctx context.Context, vault, archiveID string) error
}

// UploadHandle identifies an initiated multipart upload.
type UploadHandle struct {
	Vault    string
	UploadID string
	Location string
	PartSize int64
}

// ByteRange is an inclusive range of archive offsets.
type ByteRange struct {
	Start int64
	End   int64
}

// String renders the range in Content-Range form, e.g. "bytes 0-1048575/*".
func (r ByteRange) String() string {
	return fmt.Sprintf("bytes %d-%d/*", r.Start, r.End)
}

// ArchiveReceipt is the service confirmation of a completed upload.
type ArchiveReceipt struct {
	ArchiveID string
	Location  string
	Checksum  string
}

// JobSpec describes a job to initiate. ArchiveID is only used for
// retrievals.
type JobSpec struct {
	Type        models.JobType
	ArchiveID   string
	Description string
}

// JobHandle is what the service returns for a newly initiated job.
type JobHandle struct {
	JobID    string
	Location string
}

// JobStatus is a single DescribeJob answer.
type JobStatus struct {
	JobID         string
	Completed     bool
	Succeeded     bool
	StatusCode    string
	StatusMessage string
	TreeHash      string
}

// JobOutput streams a completed job's output. Callers close Body.
type JobOutput struct {
	Body        io.ReadCloser
	Checksum    string
	Description string
}

// VaultSummary is one entry of ListVaults.
type VaultSummary struct {
	Name string
	ARN  string
}
