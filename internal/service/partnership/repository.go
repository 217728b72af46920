package partnership

import (
	"context"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
)

// Repository defines the data access contract for partnership workflows.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single workflow. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.PartnershipWorkflow, error)

	// GetActiveByInfluencer returns the influencer's ACTIVE workflow, or
	// ErrNotFound when none exists.
	GetActiveByInfluencer(ctx context.Context, influencerID string) (*domain.PartnershipWorkflow, error)

	// ListByInfluencer returns all workflows for an influencer, newest first.
	ListByInfluencer(ctx context.Context, influencerID string) ([]domain.PartnershipWorkflow, error)

	// Create inserts the workflow and sets the influencer's status in one
	// transaction. Returns ErrActiveWorkflowExists if the influencer already
	// has an ACTIVE workflow, ErrInfluencerNotFound if the influencer is gone.
	Create(ctx context.Context, w *domain.PartnershipWorkflow, influencerStatus domain.InfluencerStatus) error

	// Apply executes a transition atomically: the workflow field updates,
	// the influencer status change, and the notification outbox insert all
	// commit or roll back together.
	Apply(ctx context.Context, workflowID string, t Transition) error

	// GetInfluencer resolves an influencer by id (for notification
	// recipients). Returns ErrInfluencerNotFound when absent.
	GetInfluencer(ctx context.Context, id string) (*domain.Influencer, error)

	// GetInfluencerByPortalToken resolves the portal token to its owner.
	// Returns ErrInvalidPortalToken when no influencer carries the token.
	GetInfluencerByPortalToken(ctx context.Context, token string) (*domain.Influencer, error)
}

// Transition is the unit of work for one workflow state change. Nil/zero
// members are not applied.
type Transition struct {
	// Workflow field updates
	SetStep           *int
	StampStep         *int // which stepN_completed_at column to set
	StampTime         time.Time
	SetAgreedPrice    *float64
	SetWorkflowStatus *domain.WorkflowStatus
	SetCancelledAt    bool
	SetFields         map[string]any // allowlisted portal column updates

	// Influencer status update (same transaction)
	InfluencerID        string
	SetInfluencerStatus *domain.InfluencerStatus

	// Notification outbox insert (same transaction, dispatched later)
	Notification *domain.Notification
}
