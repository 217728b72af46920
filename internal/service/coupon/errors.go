package coupon

import "errors"

// Sentinel errors for the coupon service layer.
var (
	ErrNotFound      = errors.New("coupon not found")
	ErrDuplicateCode = errors.New("coupon code already exists")
)
