// Package models defines the records coldvault keeps on local disk: ledger
// entries for service jobs, upload manifests, and vault inventories.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/coldvault/internal/common"
)

// JobType classifies a service job.
type JobType string

const (
	JobTypeInventory JobType = "inventory"
	JobTypeRetrieval JobType = "retrieval"
)

// ServiceType is the job type string the archive service expects.
func (t JobType) ServiceType() string {
	switch t {
	case JobTypeInventory:
		return "inventory-retrieval"
	case JobTypeRetrieval:
		return "archive-retrieval"
	default:
		return string(t)
	}
}

// InitiatedJob is one ledger entry: a service job that has been started but
// whose output has not been written locally yet.
type InitiatedJob struct {
	JobID     string    `json:"job_id"`
	Vault     string    `json:"vault"`
	Location  string    `json:"location"`
	JobType   JobType   `json:"job_type"`
	CreatedAt time.Time `json:"created_at"`

	// Retrieval jobs only.
	ArchiveID  string `json:"archive_id,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

// Expired reports whether the job is at least ttl old at now.
func (j InitiatedJob) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(j.CreatedAt) >= ttl
}

// VaultFromLocation recovers the vault name from a job or archive location of
// the form /<account>/vaults/<vault>/jobs/<id>.
func VaultFromLocation(location string) (string, error) {
	parts := strings.Split(location, "/")
	if len(parts) < 4 || parts[0] != "" || parts[2] != "vaults" || parts[3] == "" {
		return "", fmt.Errorf("%w: %q", common.ErrMalformedLocation, location)
	}
	return parts[3], nil
}
