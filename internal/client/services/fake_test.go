package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/coldvault/internal/client/client"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
)

type sentPart struct {
	Range    client.ByteRange
	Checksum treehash.Digest
	Body     []byte
}

type outputPreset struct {
	Body     string
	Checksum string
}

// fakeClient records calls and answers from presets. Methods that a test
// does not preset fall through to the embedded nil Client and panic.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	// uploads
	InitiateErr  error
	PartErrAt    map[int64]error // keyed by range start
	CompleteErr  error
	Parts        []sentPart
	Completed    bool
	CompleteSize int64
	CompleteHash treehash.Digest
	Aborted      int

	// jobs
	JobHandle   *client.JobHandle
	JobErr      error
	Initiated   []client.JobSpec
	Statuses    map[string][]*client.JobStatus
	DescribeErr map[string]error
	Describes   map[string]int
	Outputs     map[string]*outputPreset
	Fetched     []string

	// vaults
	Deleted []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		PartErrAt:   map[int64]error{},
		Statuses:    map[string][]*client.JobStatus{},
		DescribeErr: map[string]error{},
		Describes:   map[string]int{},
		Outputs:     map[string]*outputPreset{},
	}
}

func (f *fakeClient) InitiateMultipartUpload(ctx context.Context, vault, description string, partSize int64) (*client.UploadHandle, error) {
	if f.InitiateErr != nil {
		return nil, f.InitiateErr
	}
	return &client.UploadHandle{Vault: vault, UploadID: "UPLOAD1", PartSize: partSize}, nil
}

func (f *fakeClient) UploadPart(ctx context.Context, h *client.UploadHandle, rng client.ByteRange, checksum treehash.Digest, body io.ReadSeeker) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Parts = append(f.Parts, sentPart{Range: rng, Checksum: checksum, Body: data})
	if err := f.PartErrAt[rng.Start]; err != nil {
		return "", err
	}
	return checksum.String(), nil
}

func (f *fakeClient) CompleteMultipartUpload(ctx context.Context, h *client.UploadHandle, size int64, treeHash treehash.Digest) (*client.ArchiveReceipt, error) {
	f.Completed = true
	f.CompleteSize = size
	f.CompleteHash = treeHash
	if f.CompleteErr != nil {
		return nil, f.CompleteErr
	}
	return &client.ArchiveReceipt{ArchiveID: "ARCHIVE1", Checksum: treeHash.String()}, nil
}

func (f *fakeClient) AbortMultipartUpload(ctx context.Context, h *client.UploadHandle) error {
	f.Aborted++
	return nil
}

func (f *fakeClient) InitiateJob(ctx context.Context, vault string, spec client.JobSpec) (*client.JobHandle, error) {
	f.Initiated = append(f.Initiated, spec)
	if f.JobErr != nil {
		return nil, f.JobErr
	}
	if f.JobHandle == nil {
		return nil, fmt.Errorf("%w: unexpected InitiateJob", common.ErrService)
	}
	return f.JobHandle, nil
}

// DescribeJob answers with the job's preset statuses in order and repeats
// the last one.
func (f *fakeClient) DescribeJob(ctx context.Context, vault, jobID string) (*client.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.Describes[jobID]
	f.Describes[jobID] = n + 1

	if err := f.DescribeErr[jobID]; err != nil {
		return nil, err
	}
	list := f.Statuses[jobID]
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no such job %s", common.ErrService, jobID)
	}
	if n >= len(list) {
		n = len(list) - 1
	}
	return list[n], nil
}

func (f *fakeClient) GetJobOutput(ctx context.Context, vault, jobID string) (*client.JobOutput, error) {
	f.Fetched = append(f.Fetched, jobID)
	p, ok := f.Outputs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: no output for %s", common.ErrService, jobID)
	}
	return &client.JobOutput{Body: io.NopCloser(strings.NewReader(p.Body)), Checksum: p.Checksum}, nil
}

func (f *fakeClient) CreateVault(ctx context.Context, vault string) (string, error) {
	return "/111122223333/vaults/" + vault, nil
}

func (f *fakeClient) ListVaults(ctx context.Context) ([]client.VaultSummary, error) {
	return []client.VaultSummary{{Name: "photos"}, {Name: "taxes"}}, nil
}

func (f *fakeClient) DeleteArchive(ctx context.Context, vault, archiveID string) error {
	f.Deleted = append(f.Deleted, vault+"/"+archiveID)
	return nil
}

func completed(jobID, treeHash string) *client.JobStatus {
	return &client.JobStatus{JobID: jobID, Completed: true, Succeeded: true, StatusCode: "Succeeded", TreeHash: treeHash}
}

func inProgress(jobID string) *client.JobStatus {
	return &client.JobStatus{JobID: jobID, StatusCode: "InProgress"}
}
