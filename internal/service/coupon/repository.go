package coupon

import (
	"context"

	"github.com/lumina/partnerdesk/internal/domain"
)

// Repository defines the data access contract for coupons.
type Repository interface {
	// Get returns a single coupon. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Coupon, error)

	// GetByCode returns the coupon with the given code.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)

	// List returns coupons, optionally filtered by influencer.
	List(ctx context.Context, influencerID string) ([]domain.Coupon, error)

	// Create inserts a new coupon. Returns ErrDuplicateCode when the code
	// is already registered.
	Create(ctx context.Context, c *domain.Coupon) error

	// Delete removes a coupon row.
	Delete(ctx context.Context, id string) error

	// ClearWorkflowReference blanks the coupon_code field on any workflow
	// that references the code. Used when a coupon is retired.
	ClearWorkflowReference(ctx context.Context, code string) error
}

// Storefront is the slice of the Shopify Admin API the coupon service needs.
// DeleteDiscount returns found=false (and no error) when the storefront
// reports the price rule absent, so "already gone" never propagates as a
// failure.
type Storefront interface {
	CreateDiscount(ctx context.Context, code string, percentOff float64) (priceRuleID, discountID string, err error)
	DeleteDiscount(ctx context.Context, priceRuleID string) (found bool, err error)
}
