package jobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/coldvault/internal/client/models"
)

// Repository describes the ledger operations the job services rely on.
type Repository interface {
	// List returns all jobs in insertion order.
	List(ctx context.Context) ([]models.InitiatedJob, error)

	// Insert adds a job, replacing any entry with the same job id.
	Insert(ctx context.Context, job models.InitiatedJob) error

	// Remove deletes the job with the given id. Unknown ids are a no-op.
	Remove(ctx context.Context, jobID string) error

	// Prune deletes jobs created at least ttl before now and reports how many
	// were removed.
	Prune(ctx context.Context, now time.Time, ttl time.Duration) (int, error)
}
