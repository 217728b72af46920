package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/payment"
)

// PaymentRepo implements payment.Repository against PostgreSQL.
type PaymentRepo struct{ db *sql.DB }

// NewPaymentRepo creates a Postgres-backed payment repository.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, influencer_id, coupon_code, order_id, order_total,
       commission, currency, status, batch_id, ordered_at, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.InfluencerID, &p.CouponCode, &p.OrderID, &p.OrderTotal,
		&p.Commission, &p.Currency, &p.Status, &p.BatchID, &p.OrderedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepo) Get(ctx context.Context, id string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID))
	if err == sql.ErrNoRows {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment by order: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) List(ctx context.Context, f payment.ListFilter) ([]domain.Payment, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"TRUE"}
	args := []interface{}{}
	idx := 1
	if f.InfluencerID != "" {
		where = append(where, fmt.Sprintf("influencer_id = $%d", idx))
		args = append(args, f.InfluencerID)
		idx++
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, f.Status)
		idx++
	}
	if f.BatchID != "" {
		where = append(where, fmt.Sprintf("batch_id = $%d", idx))
		args = append(args, f.BatchID)
		idx++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY ordered_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, cond, idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, influencer_id, coupon_code, order_id, order_total,
		       commission, currency, status, ordered_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
	`, p.ID, p.InfluencerID, p.CouponCode, p.OrderID, p.OrderTotal,
		p.Commission, p.Currency, p.Status, p.OrderedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return payment.ErrDuplicateOrder
	}
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// AssignBatch sweeps pending payments into the batch inside one transaction.
func (r *PaymentRepo) AssignBatch(ctx context.Context, b *domain.PaymentBatch) ([]domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assign batch: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment_batches (id, status, created_at)
		VALUES ($1,$2,NOW())
	`, b.ID, b.Status); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		UPDATE payments SET status = $1, batch_id = $2
		WHERE status = $3
		RETURNING `+paymentColumns,
		domain.PaymentBatched, b.ID, domain.PaymentPending)
	if err != nil {
		return nil, fmt.Errorf("sweep pending payments: %w", err)
	}

	var moved []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan swept payment: %w", err)
		}
		moved = append(moved, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(moved) == 0 {
		// Nothing pending; drop the empty batch with the rollback.
		return nil, nil
	}

	total := 0.0
	for _, p := range moved {
		total += p.Commission
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE payment_batches SET payment_count = $1, total_amount = $2 WHERE id = $3`,
		len(moved), total, b.ID); err != nil {
		return nil, fmt.Errorf("update batch totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assign batch: %w", err)
	}
	return moved, nil
}

const batchColumns = `id, status, payment_count, total_amount, COALESCE(export_key,''), paid_at, created_at`

func scanBatch(row interface{ Scan(...any) error }) (*domain.PaymentBatch, error) {
	b := &domain.PaymentBatch{}
	err := row.Scan(&b.ID, &b.Status, &b.PaymentCount, &b.TotalAmount, &b.ExportKey, &b.PaidAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PaymentRepo) GetBatch(ctx context.Context, id string) (*domain.PaymentBatch, error) {
	b, err := scanBatch(r.db.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM payment_batches WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, payment.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *PaymentRepo) ListBatches(ctx context.Context) ([]domain.PaymentBatch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+batchColumns+` FROM payment_batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) ListByBatch(ctx context.Context, batchID string) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE batch_id = $1 ORDER BY ordered_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch payments: %w", err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) MarkBatchPaid(ctx context.Context, batchID string, paidAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark batch paid: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE payment_batches SET status = $1, paid_at = $2 WHERE id = $3`,
		domain.BatchPaid, paidAt, batchID)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.ErrBatchNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = $1 WHERE batch_id = $2`,
		domain.PaymentPaid, batchID); err != nil {
		return fmt.Errorf("update batch payments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark batch paid: %w", err)
	}
	return nil
}

func (r *PaymentRepo) SetBatchExportKey(ctx context.Context, batchID, key string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_batches SET export_key = $1 WHERE id = $2`, key, batchID)
	if err != nil {
		return fmt.Errorf("set batch export key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.ErrBatchNotFound
	}
	return nil
}
