package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/coldvault/internal/client/client"
	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/filex"
	"github.com/dmitrijs2005/coldvault/internal/logging"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
	"github.com/dustin/go-humanize"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultPollInterval = time.Hour
	DefaultJobTTL       = 24 * time.Hour

	// DefaultOutputPath is where retrieved archives land when no output
	// path was given.
	DefaultOutputPath = "archive"
)

// Status is the outcome of a reconciliation pass or a job run.
type Status int

const (
	StatusDone Status = iota
	StatusPending
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusPending:
		return "pending"
	default:
		return "failed"
	}
}

var errJobPending = errors.New("job not complete")

// JobService drives inventory and retrieval jobs through the ledger.
//
// Contract:
//   - ResolvePending: one non-blocking pass over ledger jobs of a type; the
//     first completed job has its output written and is removed.
//   - StartInventory / StartRetrieval: initiate a job and record it.
//   - AwaitCompletion: poll a job at a fixed interval until it completes or
//     ctx is done.
//   - RunInventory / RunRetrieval: reconcile, then resume or start a job,
//     wait for it and write its output.
type JobService interface {
	ResolvePending(ctx context.Context, jobType models.JobType) (Status, error)
	StartInventory(ctx context.Context, vault string) (*models.InitiatedJob, error)
	StartRetrieval(ctx context.Context, vault, archiveID, outputPath string) (*models.InitiatedJob, error)
	AwaitCompletion(ctx context.Context, job models.InitiatedJob) (*client.JobStatus, error)
	RunInventory(ctx context.Context, vault string) (Status, error)
	RunRetrieval(ctx context.Context, vault, archiveID, outputPath string) (Status, error)
}

// JobOptions tunes a JobService. Zero fields take the defaults.
type JobOptions struct {
	StateDir     string
	PollInterval time.Duration
	TTL          time.Duration
	Now          func() time.Time
}

type jobService struct {
	client client.Client
	repo   jobs.Repository
	log    logging.Logger
	opts   JobOptions
}

func NewJobService(c client.Client, repo jobs.Repository, log logging.Logger, opts JobOptions) JobService {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultJobTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &jobService{client: c, repo: repo, log: log, opts: opts}
}

// InventoryPath is where the inventory of vault is stored under stateDir.
func InventoryPath(stateDir, vault string) string {
	return filepath.Join(stateDir, "vault", vault, "inventory.json")
}

func (s *jobService) ResolvePending(ctx context.Context, jobType models.JobType) (Status, error) {
	st, _, err := s.resolve(ctx, jobType, nil)
	return st, err
}

// resolve checks every ledger job of jobType accepted by match (all of them
// when match is nil) exactly once. It never waits. Jobs the service no
// longer knows are dropped from the ledger; the ids of jobs whose describe
// call failed otherwise are returned so they are not resumed.
func (s *jobService) resolve(ctx context.Context, jobType models.JobType, match func(models.InitiatedJob) bool) (Status, map[string]bool, error) {
	if _, err := s.repo.Prune(ctx, s.opts.Now(), s.opts.TTL); err != nil {
		return StatusFailed, nil, err
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return StatusFailed, nil, err
	}

	unreachable := map[string]bool{}

	checked, failed := 0, 0
	for _, job := range list {
		if job.JobType != jobType || (match != nil && !match(job)) {
			continue
		}
		checked++

		log := s.log.With("job_id", job.JobID, "vault", job.Vault)

		st, err := s.client.DescribeJob(ctx, job.Vault, job.JobID)
		if errors.Is(err, client.ErrNotFound) {
			failed++
			log.Warn(ctx, "job unknown to the service, dropping it", "error", err)
			if err := s.repo.Remove(ctx, job.JobID); err != nil {
				return StatusFailed, nil, err
			}
			continue
		}
		if err != nil {
			failed++
			unreachable[job.JobID] = true
			log.Warn(ctx, "describe job failed", "error", err)
			continue
		}

		if !st.Completed {
			log.Info(ctx, "job still in progress", "status", st.StatusCode)
			continue
		}

		if !st.Succeeded {
			failed++
			log.Error(ctx, "job failed", "status", st.StatusCode, "message", st.StatusMessage)
			if err := s.repo.Remove(ctx, job.JobID); err != nil {
				return StatusFailed, nil, err
			}
			continue
		}

		if err := s.finish(ctx, job, st); err != nil {
			return StatusFailed, nil, err
		}
		return StatusDone, nil, nil
	}

	if checked > 0 && failed == checked {
		return StatusFailed, unreachable, nil
	}
	return StatusPending, unreachable, nil
}

func (s *jobService) StartInventory(ctx context.Context, vault string) (*models.InitiatedJob, error) {
	return s.start(ctx, vault, client.JobSpec{Type: models.JobTypeInventory}, "")
}

func (s *jobService) StartRetrieval(ctx context.Context, vault, archiveID, outputPath string) (*models.InitiatedJob, error) {
	if outputPath == "" {
		outputPath = DefaultOutputPath
	}
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: output path %s: %w", common.ErrIO, outputPath, err)
	}
	return s.start(ctx, vault, client.JobSpec{Type: models.JobTypeRetrieval, ArchiveID: archiveID}, abs)
}

func (s *jobService) start(ctx context.Context, vault string, spec client.JobSpec, outputPath string) (*models.InitiatedJob, error) {
	h, err := s.client.InitiateJob(ctx, vault, spec)
	if err != nil {
		return nil, err
	}

	parsed, perr := models.VaultFromLocation(h.Location)
	switch {
	case vault == "" && perr != nil:
		return nil, fmt.Errorf("job %s: %w", h.JobID, perr)
	case vault == "":
		vault = parsed
	case perr != nil:
		s.log.Warn(ctx, "unexpected job location", "job_id", h.JobID, "location", h.Location)
	}

	job := models.InitiatedJob{
		JobID:      h.JobID,
		Vault:      vault,
		Location:   h.Location,
		JobType:    spec.Type,
		CreatedAt:  s.opts.Now().UTC(),
		ArchiveID:  spec.ArchiveID,
		OutputPath: outputPath,
	}
	if err := s.repo.Insert(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "job initiated", "job_id", job.JobID, "vault", vault, "type", job.JobType)
	return &job, nil
}

func (s *jobService) AwaitCompletion(ctx context.Context, job models.InitiatedJob) (*client.JobStatus, error) {
	log := s.log.With("job_id", job.JobID, "vault", job.Vault)

	var status *client.JobStatus
	err := retry.Do(ctx, retry.NewConstant(s.opts.PollInterval), func(ctx context.Context) error {
		st, err := s.client.DescribeJob(ctx, job.Vault, job.JobID)
		if err != nil {
			return err
		}
		if !st.Completed {
			log.Info(ctx, "job not ready, waiting", "status", st.StatusCode, "interval", s.opts.PollInterval)
			return retry.RetryableError(errJobPending)
		}
		status = st
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("stopped waiting for job %s, it stays in the ledger: %w", job.JobID, err)
		}
		return nil, err
	}

	if !status.Succeeded {
		return nil, fmt.Errorf("%w: job %s ended with %s: %s", common.ErrService, job.JobID, status.StatusCode, status.StatusMessage)
	}
	return status, nil
}

func (s *jobService) RunInventory(ctx context.Context, vault string) (Status, error) {
	match := func(j models.InitiatedJob) bool { return j.Vault == vault }
	return s.run(ctx, models.JobTypeInventory, match, func() (*models.InitiatedJob, error) {
		return s.StartInventory(ctx, vault)
	})
}

func (s *jobService) RunRetrieval(ctx context.Context, vault, archiveID, outputPath string) (Status, error) {
	match := func(j models.InitiatedJob) bool { return j.Vault == vault && j.ArchiveID == archiveID }
	return s.run(ctx, models.JobTypeRetrieval, match, func() (*models.InitiatedJob, error) {
		return s.StartRetrieval(ctx, vault, archiveID, outputPath)
	})
}

func (s *jobService) run(ctx context.Context, jobType models.JobType, match func(models.InitiatedJob) bool, start func() (*models.InitiatedJob, error)) (Status, error) {
	st, unreachable, err := s.resolve(ctx, jobType, match)
	if err != nil {
		return StatusFailed, err
	}
	if st == StatusDone {
		return StatusDone, nil
	}

	job, err := s.pending(ctx, jobType, func(j models.InitiatedJob) bool {
		return match(j) && !unreachable[j.JobID]
	})
	if err != nil {
		return StatusFailed, err
	}
	if job != nil {
		s.log.Info(ctx, "resuming job from ledger", "job_id", job.JobID)
	} else if job, err = start(); err != nil {
		return StatusFailed, err
	}

	status, err := s.AwaitCompletion(ctx, *job)
	if err != nil {
		if ctx.Err() != nil {
			return StatusPending, err
		}
		return StatusFailed, err
	}

	if err := s.finish(ctx, *job, status); err != nil {
		return StatusFailed, err
	}
	return StatusDone, nil
}

func (s *jobService) pending(ctx context.Context, jobType models.JobType, match func(models.InitiatedJob) bool) (*models.InitiatedJob, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].JobType == jobType && match(list[i]) {
			return &list[i], nil
		}
	}
	return nil, nil
}

// finish downloads a completed job's output, verifies it when the service
// supplied a tree hash and drops the job from the ledger. Output that fails
// verification never replaces the destination.
func (s *jobService) finish(ctx context.Context, job models.InitiatedJob, st *client.JobStatus) error {
	dest := s.destination(job)

	out, err := s.client.GetJobOutput(ctx, job.Vault, job.JobID)
	if err != nil {
		return err
	}
	defer out.Body.Close()

	expected := out.Checksum
	if expected == "" {
		expected = st.TreeHash
	}

	h := treehash.New()
	verify := func() error {
		if expected == "" {
			return nil
		}
		got, err := h.Sum()
		if err != nil || got.String() != expected {
			return fmt.Errorf("%w: job %s: expected %s, got %s", common.ErrChecksumMismatch, job.JobID, expected, got)
		}
		return nil
	}

	n, err := filex.WriteStreamAtomicVerified(dest, io.TeeReader(out.Body, h), 0o600, verify)
	if errors.Is(err, common.ErrChecksumMismatch) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrIO, err)
	}

	if err := s.repo.Remove(ctx, job.JobID); err != nil {
		return err
	}

	s.log.Info(ctx, "job output written",
		"job_id", job.JobID, "type", job.JobType, "path", dest, "size", humanize.IBytes(uint64(n)))
	return nil
}

func (s *jobService) destination(job models.InitiatedJob) string {
	if job.JobType == models.JobTypeInventory {
		return InventoryPath(s.opts.StateDir, job.Vault)
	}
	if job.OutputPath == "" {
		return DefaultOutputPath
	}
	return job.OutputPath
}
