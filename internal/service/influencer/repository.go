package influencer

import (
	"context"

	"github.com/lumina/partnerdesk/internal/domain"
)

// Repository defines the data access contract for influencers.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single influencer. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Influencer, error)

	// GetByHandle returns the influencer with the given handle/platform pair.
	GetByHandle(ctx context.Context, handle string, platform domain.SocialPlatform) (*domain.Influencer, error)

	// GetByEmail returns the influencer whose contact address matches.
	GetByEmail(ctx context.Context, email string) (*domain.Influencer, error)

	// List returns influencers matching the filter, ordered by created_at DESC.
	List(ctx context.Context, f ListFilter) ([]domain.Influencer, int, error)

	// ListPendingImport returns import_pending influencers in FIFO order by
	// creation time, up to limit.
	ListPendingImport(ctx context.Context, limit int) ([]domain.Influencer, error)

	// Create inserts a new influencer. Returns ErrDuplicateHandle when the
	// handle/platform pair is already registered.
	Create(ctx context.Context, inf *domain.Influencer) error

	// Update modifies an influencer. Only non-nil fields are applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// UpdateStatus sets the influencer's lifecycle status.
	UpdateStatus(ctx context.Context, id string, status domain.InfluencerStatus) error

	// UpdateMetrics writes scraped profile metrics.
	UpdateMetrics(ctx context.Context, id string, followers int64, engagementRate float64, avgViews int64) error
}

// ListFilter controls pagination and filtering for influencer lists.
type ListFilter struct {
	Status   string
	Platform string
	Search   string
	Limit    int
	Offset   int
}

// UpdateFields holds the mutable fields for an influencer update.
// Nil fields are not applied.
type UpdateFields struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	Notes          *string  `json:"notes"`
	CommissionRate *float64 `json:"commission_rate"`
}
