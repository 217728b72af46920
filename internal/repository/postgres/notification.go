package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
)

// NotificationRepo reads and settles the workflow notification outbox.
// Rows are inserted by WorkflowRepo.Apply inside transition transactions.
type NotificationRepo struct{ db *sql.DB }

// NewNotificationRepo creates a Postgres-backed outbox repository.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// ListPending returns undelivered notifications, oldest first. The
// dispatcher holds a distributed lock, so one instance drains at a time.
func (r *NotificationRepo) ListPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workflow_id, influencer_id, kind, recipient, subject, body,
		       status, attempts, COALESCE(last_error,''), sent_at, created_at
		FROM workflow_notifications
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, domain.NotificationPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.WorkflowID, &n.InfluencerID, &n.Kind, &n.Recipient, &n.Subject, &n.Body,
			&n.Status, &n.Attempts, &n.LastError, &n.SentAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkSent settles a delivered notification.
func (r *NotificationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE workflow_notifications
		SET status = $1, attempts = attempts + 1, sent_at = $2, last_error = ''
		WHERE id = $3
	`, domain.NotificationSent, sentAt, id)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// RecordFailure bumps the attempt counter. final moves the row to failed;
// otherwise it stays pending for the next dispatch cycle.
func (r *NotificationRepo) RecordFailure(ctx context.Context, id, errMsg string, final bool) error {
	status := domain.NotificationPending
	if final {
		status = domain.NotificationFailed
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE workflow_notifications
		SET status = $1, attempts = attempts + 1, last_error = $2
		WHERE id = $3
	`, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("record notification failure: %w", err)
	}
	return nil
}
