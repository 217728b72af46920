package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/inbox"
)

// EmailRepo implements inbox.Repository against PostgreSQL.
type EmailRepo struct{ db *sql.DB }

// NewEmailRepo creates a Postgres-backed email repository.
func NewEmailRepo(db *sql.DB) *EmailRepo { return &EmailRepo{db: db} }

const emailColumns = `id, gmail_id, thread_id, direction, influencer_id,
       from_address, to_address, subject, COALESCE(snippet,''), received_at, created_at`

func scanEmail(row interface{ Scan(...any) error }) (*domain.Email, error) {
	e := &domain.Email{}
	err := row.Scan(
		&e.ID, &e.GmailID, &e.ThreadID, &e.Direction, &e.InfluencerID,
		&e.FromAddress, &e.ToAddress, &e.Subject, &e.Snippet, &e.ReceivedAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpsertEmail inserts the message unless its gmail id is already stored.
func (r *EmailRepo) UpsertEmail(ctx context.Context, e *domain.Email) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO emails (id, gmail_id, thread_id, direction, influencer_id,
		       from_address, to_address, subject, snippet, received_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		ON CONFLICT (gmail_id) DO NOTHING
	`, e.ID, e.GmailID, e.ThreadID, e.Direction, e.InfluencerID,
		e.FromAddress, e.ToAddress, e.Subject, e.Snippet, e.ReceivedAt)
	if err != nil {
		return false, fmt.Errorf("upsert email: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *EmailRepo) GetEmail(ctx context.Context, id string) (*domain.Email, error) {
	e, err := scanEmail(r.db.QueryRowContext(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, inbox.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get email: %w", err)
	}
	return e, nil
}

func (r *EmailRepo) ListEmails(ctx context.Context, f inbox.ListFilter) ([]domain.Email, int, error) {
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
	if f.Direction != "" {
		where = append(where, fmt.Sprintf("direction = $%d", idx))
		args = append(args, f.Direction)
		idx++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emails WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count emails: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM emails WHERE %s ORDER BY received_at DESC LIMIT $%d OFFSET $%d`,
		emailColumns, cond, idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	var out []domain.Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *EmailRepo) GetTemplate(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	t := &domain.EmailTemplate{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, subject, body, created_at, updated_at
		FROM email_templates WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, inbox.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (r *EmailRepo) ListTemplates(ctx context.Context) ([]domain.EmailTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, subject, body, created_at, updated_at
		FROM email_templates ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.EmailTemplate
	for rows.Next() {
		var t domain.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *EmailRepo) CreateTemplate(ctx context.Context, t *domain.EmailTemplate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_templates (id, name, subject, body, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, t.ID, t.Name, t.Subject, t.Body, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *EmailRepo) UpdateTemplate(ctx context.Context, t *domain.EmailTemplate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE email_templates SET name = $1, subject = $2, body = $3, updated_at = $4
		WHERE id = $5
	`, t.Name, t.Subject, t.Body, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return inbox.ErrTemplateNotFound
	}
	return nil
}

func (r *EmailRepo) DeleteTemplate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return inbox.ErrTemplateNotFound
	}
	return nil
}
