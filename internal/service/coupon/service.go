package coupon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
)

// Service implements coupon business logic: every local coupon mirrors a
// storefront discount, and retirement always reconciles the storefront side
// before touching the local row.
type Service struct {
	repo       Repository
	storefront Storefront // nil when Shopify is not configured
}

// NewService creates a coupon service. storefront may be nil, in which case
// coupons are managed locally only (and creation fails for callers that
// require the mirror; see Create).
func NewService(repo Repository, storefront Storefront) *Service {
	return &Service{repo: repo, storefront: storefront}
}

// ErrStorefrontUnavailable is returned when an operation needs the Shopify
// integration and it is not configured.
var ErrStorefrontUnavailable = errors.New("storefront integration is not configured")

// CreateInput holds the fields for issuing a new coupon.
type CreateInput struct {
	InfluencerID string  `json:"influencer_id"`
	Code         string  `json:"code"`
	PercentOff   float64 `json:"percent_off"`
}

// Create issues a new discount code: first on the storefront, then locally.
// A duplicate code is rejected before the storefront call.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if input.InfluencerID == "" {
		return nil, fmt.Errorf("influencer id is required")
	}
	if input.PercentOff <= 0 || input.PercentOff > 100 {
		return nil, fmt.Errorf("percent_off must be in (0, 100]")
	}
	if s.storefront == nil {
		return nil, ErrStorefrontUnavailable
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	priceRuleID, discountID, err := s.storefront.CreateDiscount(ctx, code, input.PercentOff)
	if err != nil {
		return nil, fmt.Errorf("create storefront discount: %w", err)
	}

	c := &domain.Coupon{
		ID:                uuid.New().String(),
		InfluencerID:      input.InfluencerID,
		Code:              code,
		RemotePriceRuleID: priceRuleID,
		RemoteDiscountID:  discountID,
		PercentOff:        input.PercentOff,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		// Local insert failed after the remote create; leave the remote
		// discount in place and surface the error. The next delete attempt
		// reconciles it.
		return nil, err
	}
	log.Printf("[coupon.Service] issued %s for influencer %s (%.0f%% off)", code, input.InfluencerID, input.PercentOff)
	return c, nil
}

// Get returns a single coupon.
func (s *Service) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode resolves a coupon by its code, case-insensitively.
func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// List returns coupons, optionally filtered by influencer.
func (s *Service) List(ctx context.Context, influencerID string) ([]domain.Coupon, error) {
	return s.repo.List(ctx, influencerID)
}

// DeleteByCode retires a coupon. The storefront deletion is attempted first;
// a storefront that no longer knows the discount counts as success (already
// gone), not an error. Only then is the local row removed and any workflow
// reference to the code cleared.
func (s *Service) DeleteByCode(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	if c.RemotePriceRuleID != "" {
		if s.storefront == nil {
			return ErrStorefrontUnavailable
		}
		found, err := s.storefront.DeleteDiscount(ctx, c.RemotePriceRuleID)
		if err != nil {
			return fmt.Errorf("delete storefront discount: %w", err)
		}
		if !found {
			log.Printf("[coupon.Service] %s already absent on storefront, reconciling locally", code)
		}
	}

	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	if err := s.repo.ClearWorkflowReference(ctx, code); err != nil {
		// The coupon is gone either way; a stale workflow reference is
		// logged, not fatal.
		log.Printf("[coupon.Service] warning: could not clear workflow reference for %s: %v", code, err)
	}
	log.Printf("[coupon.Service] retired %s", code)
	return nil
}
