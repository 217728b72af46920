package domain

import "time"

// PaymentStatus enumerates commission record states.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentBatched PaymentStatus = "batched"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment is a commission record derived from a storefront order attributed
// to an influencer's coupon.
type Payment struct {
	ID           string  `json:"id" db:"id"`
	InfluencerID string  `json:"influencer_id" db:"influencer_id"`
	CouponCode   string  `json:"coupon_code" db:"coupon_code"`
	OrderID      string  `json:"order_id" db:"order_id"`
	OrderTotal   float64 `json:"order_total" db:"order_total"`
	Commission   float64 `json:"commission" db:"commission"`
	Currency     string  `json:"currency" db:"currency"`

	Status  PaymentStatus `json:"status" db:"status"`
	BatchID *string       `json:"batch_id" db:"batch_id"`

	OrderedAt time.Time `json:"ordered_at" db:"ordered_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BatchStatus enumerates payout batch states.
type BatchStatus string

const (
	BatchOpen BatchStatus = "open"
	BatchPaid BatchStatus = "paid"
)

// PaymentBatch aggregates pending commissions into a single payout run.
type PaymentBatch struct {
	ID           string      `json:"id" db:"id"`
	Status       BatchStatus `json:"status" db:"status"`
	PaymentCount int         `json:"payment_count" db:"payment_count"`
	TotalAmount  float64     `json:"total_amount" db:"total_amount"`
	ExportKey    string      `json:"export_key" db:"export_key"` // S3 object key of the payout CSV, if exported
	PaidAt       *time.Time  `json:"paid_at" db:"paid_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
