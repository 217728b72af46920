// Package prospect runs asynchronous influencer-prospecting jobs and tracks
// their progress in an injected job store. The default store is in-memory
// and volatile: jobs disappear on process restart, which callers polling the
// listing endpoint are expected to tolerate.
package prospect

import (
	"context"
	"errors"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
)

// ErrJobNotFound is returned when a job id is unknown to the store.
var ErrJobNotFound = errors.New("prospect job not found")

// JobUpdate is a partial update merged onto a stored job. Nil fields are
// left untouched.
type JobUpdate struct {
	Status        *domain.JobStatus
	ScannedItems  *int
	ImportedItems *int
	Error         *string
	Result        map[string]any
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// Store abstracts job persistence so the registry can be backed by process
// memory or Redis without the service knowing which.
type Store interface {
	// Create stores a new job. The job id must be unique within the store.
	Create(ctx context.Context, job *domain.ProspectJob) error

	// Get returns a job by id. Returns ErrJobNotFound if unknown.
	Get(ctx context.Context, id string) (*domain.ProspectJob, error)

	// Update merges the partial update onto the stored job and returns the
	// result. Returns ErrJobNotFound if the id is unknown.
	Update(ctx context.Context, id string, u JobUpdate) (*domain.ProspectJob, error)

	// ListByOwner returns the owner's jobs, newest first. activeOnly
	// restricts to pending/running jobs.
	ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]domain.ProspectJob, error)
}

func applyUpdate(job *domain.ProspectJob, u JobUpdate) {
	if u.Status != nil {
		job.Status = *u.Status
	}
	if u.ScannedItems != nil {
		job.ScannedItems = *u.ScannedItems
	}
	if u.ImportedItems != nil {
		job.ImportedItems = *u.ImportedItems
	}
	if u.Error != nil {
		job.Error = *u.Error
	}
	if u.Result != nil {
		job.Result = u.Result
	}
	if u.StartedAt != nil {
		job.StartedAt = u.StartedAt
	}
	if u.CompletedAt != nil {
		job.CompletedAt = u.CompletedAt
	}
}
