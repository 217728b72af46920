package payment

import "errors"

// Sentinel errors for the payment service layer.
var (
	ErrNotFound       = errors.New("payment not found")
	ErrBatchNotFound  = errors.New("payment batch not found")
	ErrDuplicateOrder = errors.New("order already has a commission record")
	ErrEmptyBatch     = errors.New("no pending payments to batch")
	ErrBatchNotOpen   = errors.New("payment batch is not open")
)
