package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/payment"
)

var paymentTestColumns = []string{
	"id", "influencer_id", "coupon_code", "order_id", "order_total",
	"commission", "currency", "status", "batch_id", "ordered_at", "created_at",
}

func paymentRow(id string, commission float64, batchID string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, "inf-1", "ANA15", "order-" + id, 200.0,
		commission, "BRL", string(domain.PaymentBatched), batchID, now, now,
	}
}

func TestPaymentRepo_CreateMapsDuplicateOrder(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewPaymentRepo(db)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Payment{ID: "pay-1", OrderID: "order-1"})
	if !errors.Is(err, payment.ErrDuplicateOrder) {
		t.Errorf("Create() error = %v, want ErrDuplicateOrder", err)
	}
}

func TestPaymentRepo_AssignBatchSweepsPendingAndCommits(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewPaymentRepo(db)

	batchID := "batch-1"
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_batches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE payments SET status").
		WithArgs(domain.PaymentBatched, batchID, domain.PaymentPending).
		WillReturnRows(sqlmock.NewRows(paymentTestColumns).
			AddRow(paymentRow("pay-1", 25.0, batchID)...).
			AddRow(paymentRow("pay-2", 12.5, batchID)...))
	mock.ExpectExec("UPDATE payment_batches SET payment_count").
		WithArgs(2, 37.5, batchID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := repo.AssignBatch(context.Background(), &domain.PaymentBatch{ID: batchID, Status: domain.BatchOpen})
	if err != nil {
		t.Fatalf("AssignBatch() error: %v", err)
	}
	if len(moved) != 2 {
		t.Errorf("AssignBatch() moved %d payments, want 2", len(moved))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPaymentRepo_AssignBatchEmptySweepRollsBack(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewPaymentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_batches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE payments SET status").
		WillReturnRows(sqlmock.NewRows(paymentTestColumns))
	mock.ExpectRollback()

	moved, err := repo.AssignBatch(context.Background(), &domain.PaymentBatch{ID: "batch-2", Status: domain.BatchOpen})
	if err != nil {
		t.Fatalf("AssignBatch() error: %v", err)
	}
	if moved != nil {
		t.Errorf("AssignBatch() = %+v, want nil on empty sweep", moved)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPaymentRepo_MarkBatchPaidMissingBatch(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewPaymentRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_batches SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.MarkBatchPaid(context.Background(), "missing", time.Now())
	if !errors.Is(err, payment.ErrBatchNotFound) {
		t.Errorf("MarkBatchPaid() error = %v, want ErrBatchNotFound", err)
	}
}
