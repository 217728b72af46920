package domain

import "time"

// Coupon is a storefront discount code tied to an influencer for sales
// attribution. A local coupon implies either a live Shopify discount
// (RemotePriceRuleID/RemoteDiscountID set) or an explicit reconciliation.
type Coupon struct {
	ID           string `json:"id" db:"id"`
	InfluencerID string `json:"influencer_id" db:"influencer_id"`
	Code         string `json:"code" db:"code"`

	// Shopify identifiers for the mirrored discount. Empty when the coupon
	// was created before the storefront sync or reconciled as remotely absent.
	RemotePriceRuleID string `json:"remote_price_rule_id" db:"remote_price_rule_id"`
	RemoteDiscountID  string `json:"remote_discount_id" db:"remote_discount_id"`

	PercentOff float64    `json:"percent_off" db:"percent_off"`
	UsageCount int        `json:"usage_count" db:"usage_count"`
	ExpiresAt  *time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
