package payment

import (
	"context"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
)

// ListFilter narrows payment listings.
type ListFilter struct {
	InfluencerID string
	Status       string
	BatchID      string
	Limit        int
	Offset       int
}

// Repository defines the data access contract for payments and batches.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.Payment, error)

	// GetByOrder returns the commission record for a storefront order.
	// Returns ErrNotFound when the order has never been commissioned,
	// which is how webhook replays are detected.
	GetByOrder(ctx context.Context, orderID string) (*domain.Payment, error)

	List(ctx context.Context, f ListFilter) ([]domain.Payment, int, error)

	// Create inserts a commission record. Returns ErrDuplicateOrder when a
	// record for the same order id already exists.
	Create(ctx context.Context, p *domain.Payment) error

	// AssignBatch moves all pending payments into the given batch and
	// returns them. The move and the batch insert happen in one
	// transaction.
	AssignBatch(ctx context.Context, b *domain.PaymentBatch) ([]domain.Payment, error)

	GetBatch(ctx context.Context, id string) (*domain.PaymentBatch, error)
	ListBatches(ctx context.Context) ([]domain.PaymentBatch, error)
	ListByBatch(ctx context.Context, batchID string) ([]domain.Payment, error)

	// MarkBatchPaid flips the batch and all its payments to paid.
	MarkBatchPaid(ctx context.Context, batchID string, paidAt time.Time) error

	// SetBatchExportKey records where the payout CSV was uploaded.
	SetBatchExportKey(ctx context.Context, batchID, key string) error
}

// Exporter uploads a payout CSV and returns the object key it was stored
// under. Satisfied by the S3-backed export client.
type Exporter interface {
	UploadPayoutCSV(ctx context.Context, batchID string, csv []byte) (key string, err error)
}
