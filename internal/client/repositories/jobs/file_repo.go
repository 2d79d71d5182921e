package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/filex"
	"github.com/dmitrijs2005/coldvault/internal/logging"
)

type FileRepository struct {
	path string
	log  logging.Logger
	mu   sync.Mutex
}

var _ Repository = (*FileRepository)(nil)

func NewFileRepository(path string, log logging.Logger) *FileRepository {
	return &FileRepository{path: path, log: log}
}

// Path is the ledger file location.
func (r *FileRepository) Path() string {
	return r.path
}

func (r *FileRepository) load(ctx context.Context) ([]models.InitiatedJob, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read ledger: %w", common.ErrIO, err)
	}

	var list []models.InitiatedJob
	if err := json.Unmarshal(data, &list); err != nil {
		r.log.Warn(ctx, "ignoring unreadable job ledger",
			"path", r.path, "error", fmt.Errorf("%w: %w", common.ErrLedgerCorrupt, err))
		return nil, nil
	}
	return list, nil
}

func (r *FileRepository) save(list []models.InitiatedJob) error {
	if list == nil {
		list = []models.InitiatedJob{}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if err := filex.WriteFileAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: write ledger: %w", common.ErrIO, err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context) ([]models.InitiatedJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

func (r *FileRepository) Insert(ctx context.Context, job models.InitiatedJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range list {
		if list[i].JobID == job.JobID {
			list[i] = job
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, job)
	}

	return r.save(list)
}

func (r *FileRepository) Remove(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, j := range list {
		if j.JobID != jobID {
			kept = append(kept, j)
		}
	}
	if len(kept) == len(list) {
		return nil
	}

	return r.save(kept)
}

func (r *FileRepository) Prune(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := list[:0]
	for _, j := range list {
		if j.Expired(now, ttl) {
			r.log.Info(ctx, "dropping expired job", "job_id", j.JobID, "vault", j.Vault, "job_type", j.JobType)
			continue
		}
		kept = append(kept, j)
	}

	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	return removed, r.save(kept)
}
