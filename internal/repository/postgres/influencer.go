package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/influencer"
)

// InfluencerRepo implements influencer.Repository against PostgreSQL.
type InfluencerRepo struct{ db *sql.DB }

// NewInfluencerRepo creates a Postgres-backed influencer repository.
func NewInfluencerRepo(db *sql.DB) *InfluencerRepo { return &InfluencerRepo{db: db} }

const influencerColumns = `id, name, email, handle, platform, status, portal_token,
       followers, engagement_rate, avg_views, commission_rate,
       COALESCE(notes,''), source, created_at, updated_at`

func scanInfluencer(row interface{ Scan(...any) error }) (*domain.Influencer, error) {
	inf := &domain.Influencer{}
	err := row.Scan(
		&inf.ID, &inf.Name, &inf.Email, &inf.Handle, &inf.Platform, &inf.Status, &inf.PortalToken,
		&inf.Followers, &inf.EngagementRate, &inf.AvgViews, &inf.CommissionRate,
		&inf.Notes, &inf.Source, &inf.CreatedAt, &inf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inf, nil
}

func (r *InfluencerRepo) Get(ctx context.Context, id string) (*domain.Influencer, error) {
	inf, err := scanInfluencer(r.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, influencer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get influencer: %w", err)
	}
	return inf, nil
}

func (r *InfluencerRepo) GetByHandle(ctx context.Context, handle string, platform domain.SocialPlatform) (*domain.Influencer, error) {
	inf, err := scanInfluencer(r.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE handle = $1 AND platform = $2`,
		handle, platform))
	if err == sql.ErrNoRows {
		return nil, influencer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get influencer by handle: %w", err)
	}
	return inf, nil
}

func (r *InfluencerRepo) GetByEmail(ctx context.Context, email string) (*domain.Influencer, error) {
	inf, err := scanInfluencer(r.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE email = $1 ORDER BY created_at LIMIT 1`,
		email))
	if err == sql.ErrNoRows {
		return nil, influencer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get influencer by email: %w", err)
	}
	return inf, nil
}

func (r *InfluencerRepo) List(ctx context.Context, f influencer.ListFilter) ([]domain.Influencer, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"TRUE"}
	args := []interface{}{}
	idx := 1
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, f.Status)
		idx++
	}
	if f.Platform != "" {
		where = append(where, fmt.Sprintf("platform = $%d", idx))
		args = append(args, f.Platform)
		idx++
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR handle ILIKE $%d)", idx, idx))
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM influencers WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count influencers: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM influencers WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		influencerColumns, cond, idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list influencers: %w", err)
	}
	defer rows.Close()

	var out []domain.Influencer
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan influencer: %w", err)
		}
		out = append(out, *inf)
	}
	return out, total, rows.Err()
}

func (r *InfluencerRepo) ListPendingImport(ctx context.Context, limit int) ([]domain.Influencer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers
		 WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		domain.InfluencerImportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending import: %w", err)
	}
	defer rows.Close()

	var out []domain.Influencer
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan influencer: %w", err)
		}
		out = append(out, *inf)
	}
	return out, rows.Err()
}

func (r *InfluencerRepo) Create(ctx context.Context, inf *domain.Influencer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO influencers (id, name, email, handle, platform, status, portal_token,
		       followers, engagement_rate, avg_views, commission_rate, notes, source,
		       created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
	`, inf.ID, inf.Name, inf.Email, inf.Handle, inf.Platform, inf.Status, inf.PortalToken,
		inf.Followers, inf.EngagementRate, inf.AvgViews, inf.CommissionRate, inf.Notes, inf.Source)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return influencer.ErrDuplicateHandle
	}
	if err != nil {
		return fmt.Errorf("create influencer: %w", err)
	}
	return nil
}

func (r *InfluencerRepo) Update(ctx context.Context, id string, u influencer.UpdateFields) error {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{}
	idx := 1
	if u.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", idx))
		args = append(args, *u.Name)
		idx++
	}
	if u.Email != nil {
		set = append(set, fmt.Sprintf("email = $%d", idx))
		args = append(args, *u.Email)
		idx++
	}
	if u.Notes != nil {
		set = append(set, fmt.Sprintf("notes = $%d", idx))
		args = append(args, *u.Notes)
		idx++
	}
	if u.CommissionRate != nil {
		set = append(set, fmt.Sprintf("commission_rate = $%d", idx))
		args = append(args, *u.CommissionRate)
		idx++
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE influencers SET %s WHERE id = $%d`, strings.Join(set, ", "), idx),
		args...)
	if err != nil {
		return fmt.Errorf("update influencer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return influencer.ErrNotFound
	}
	return nil
}

func (r *InfluencerRepo) UpdateStatus(ctx context.Context, id string, status domain.InfluencerStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE influencers SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update influencer status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return influencer.ErrNotFound
	}
	return nil
}

func (r *InfluencerRepo) UpdateMetrics(ctx context.Context, id string, followers int64, engagementRate float64, avgViews int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE influencers
		SET followers = $1, engagement_rate = $2, avg_views = $3, updated_at = NOW()
		WHERE id = $4
	`, followers, engagementRate, avgViews, id)
	if err != nil {
		return fmt.Errorf("update influencer metrics: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return influencer.ErrNotFound
	}
	return nil
}
