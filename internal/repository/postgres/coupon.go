package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/coupon"
)

// CouponRepo implements coupon.Repository against PostgreSQL.
type CouponRepo struct{ db *sql.DB }

// NewCouponRepo creates a Postgres-backed coupon repository.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponColumns = `id, influencer_id, code, remote_price_rule_id, remote_discount_id,
       percent_off, usage_count, expires_at, created_at, updated_at`

func scanCoupon(row interface{ Scan(...any) error }) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	err := row.Scan(
		&c.ID, &c.InfluencerID, &c.Code, &c.RemotePriceRuleID, &c.RemoteDiscountID,
		&c.PercentOff, &c.UsageCount, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CouponRepo) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, coupon.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
	if err == sql.ErrNoRows {
		return nil, coupon.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}
	return c, nil
}

func (r *CouponRepo) List(ctx context.Context, influencerID string) ([]domain.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons`
	args := []interface{}{}
	if influencerID != "" {
		q += ` WHERE influencer_id = $1`
		args = append(args, influencerID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var out []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (id, influencer_id, code, remote_price_rule_id,
		       remote_discount_id, percent_off, usage_count, expires_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,0,$7,NOW(),NOW())
	`, c.ID, c.InfluencerID, c.Code, c.RemotePriceRuleID, c.RemoteDiscountID, c.PercentOff, c.ExpiresAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return coupon.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (r *CouponRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func (r *CouponRepo) ClearWorkflowReference(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE partnership_workflows SET coupon_code = '', updated_at = NOW() WHERE coupon_code = $1`,
		code)
	if err != nil {
		return fmt.Errorf("clear workflow coupon reference: %w", err)
	}
	return nil
}
