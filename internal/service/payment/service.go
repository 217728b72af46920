package payment

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
)

// Service implements commission accounting: one payment per attributed
// storefront order, rolled up into payout batches.
type Service struct {
	repo     Repository
	exporter Exporter // nil when S3 export is not configured
	now      func() time.Time
}

// NewService creates a payment service. exporter may be nil.
func NewService(repo Repository, exporter Exporter) *Service {
	return &Service{repo: repo, exporter: exporter, now: time.Now}
}

// RecordOrderInput carries an attributed order from the storefront webhook.
type RecordOrderInput struct {
	InfluencerID   string
	CouponCode     string
	OrderID        string
	OrderTotal     float64
	Currency       string
	CommissionRate float64
	OrderedAt      time.Time
}

// RecordOrder creates a pending commission for an order. Recording the same
// order twice is a no-op returning the existing payment, so webhook
// redeliveries never double-pay.
func (s *Service) RecordOrder(ctx context.Context, input RecordOrderInput) (*domain.Payment, error) {
	if input.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	if existing, err := s.repo.GetByOrder(ctx, input.OrderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "BRL"
	}
	p := &domain.Payment{
		ID:           uuid.New().String(),
		InfluencerID: input.InfluencerID,
		CouponCode:   input.CouponCode,
		OrderID:      input.OrderID,
		OrderTotal:   input.OrderTotal,
		Commission:   round2(input.OrderTotal * input.CommissionRate / 100),
		Currency:     currency,
		Status:       domain.PaymentPending,
		OrderedAt:    input.OrderedAt,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			return s.repo.GetByOrder(ctx, input.OrderID)
		}
		return nil, err
	}
	log.Printf("[payment.Service] recorded commission %.2f %s for order %s (coupon %s)",
		p.Commission, p.Currency, p.OrderID, p.CouponCode)
	return p, nil
}

// Get returns a single payment.
func (s *Service) Get(ctx context.Context, id string) (*domain.Payment, error) {
	return s.repo.Get(ctx, id)
}

// List returns payments matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Payment, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return s.repo.List(ctx, f)
}

// CreateBatch sweeps every pending payment into a new open batch. Returns
// ErrEmptyBatch when nothing is pending.
func (s *Service) CreateBatch(ctx context.Context) (*domain.PaymentBatch, error) {
	b := &domain.PaymentBatch{
		ID:     uuid.New().String(),
		Status: domain.BatchOpen,
	}
	payments, err := s.repo.AssignBatch(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, ErrEmptyBatch
	}
	b.PaymentCount = len(payments)
	for _, p := range payments {
		b.TotalAmount += p.Commission
	}
	b.TotalAmount = round2(b.TotalAmount)
	log.Printf("[payment.Service] opened batch %s: %d payments, %.2f total", b.ID, b.PaymentCount, b.TotalAmount)
	return b, nil
}

// GetBatch returns a batch by id.
func (s *Service) GetBatch(ctx context.Context, id string) (*domain.PaymentBatch, error) {
	return s.repo.GetBatch(ctx, id)
}

// ListBatches returns all payout batches, newest first.
func (s *Service) ListBatches(ctx context.Context) ([]domain.PaymentBatch, error) {
	return s.repo.ListBatches(ctx)
}

// MarkBatchPaid settles an open batch and all payments in it.
func (s *Service) MarkBatchPaid(ctx context.Context, batchID string) error {
	b, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if b.Status != domain.BatchOpen {
		return ErrBatchNotOpen
	}
	if err := s.repo.MarkBatchPaid(ctx, batchID, s.now().UTC()); err != nil {
		return err
	}
	log.Printf("[payment.Service] batch %s marked paid", batchID)
	return nil
}

// ErrExportUnavailable is returned when a batch export is requested but no
// object store is configured.
var ErrExportUnavailable = errors.New("export storage is not configured")

// ExportBatch renders the batch as a payout CSV, uploads it and records the
// object key on the batch.
func (s *Service) ExportBatch(ctx context.Context, batchID string) (string, error) {
	if s.exporter == nil {
		return "", ErrExportUnavailable
	}
	if _, err := s.repo.GetBatch(ctx, batchID); err != nil {
		return "", err
	}
	payments, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"payment_id", "influencer_id", "coupon_code", "order_id", "order_total", "commission", "currency"})
	for _, p := range payments {
		_ = w.Write([]string{
			p.ID, p.InfluencerID, p.CouponCode, p.OrderID,
			strconv.FormatFloat(p.OrderTotal, 'f', 2, 64),
			strconv.FormatFloat(p.Commission, 'f', 2, 64),
			p.Currency,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("render payout csv: %w", err)
	}

	key, err := s.exporter.UploadPayoutCSV(ctx, batchID, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("upload payout csv: %w", err)
	}
	if err := s.repo.SetBatchExportKey(ctx, batchID, key); err != nil {
		return "", err
	}
	log.Printf("[payment.Service] exported batch %s to %s", batchID, key)
	return key, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
