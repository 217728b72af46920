package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// campaignSelect pulls rollup stats alongside the row: partnered
// influencers, tracked videos and money in/out attributed to the campaign.
const campaignSelect = `
	SELECT c.id, c.name, COALESCE(c.description,''), c.status, c.budget,
	       c.starts_at, c.ends_at,
	       (SELECT COUNT(DISTINCT w.influencer_id) FROM partnership_workflows w WHERE w.campaign_id = c.id),
	       (SELECT COUNT(*) FROM videos v WHERE v.campaign_id = c.id),
	       (SELECT COALESCE(SUM(w.agreed_price),0) FROM partnership_workflows w WHERE w.campaign_id = c.id AND w.status <> 'cancelled'),
	       (SELECT COALESCE(SUM(p.order_total),0) FROM payments p
	          JOIN partnership_workflows w ON w.influencer_id = p.influencer_id AND w.campaign_id = c.id),
	       c.created_at, c.updated_at
	FROM campaigns c`

func scanCampaign(row interface{ Scan(...any) error }) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Status, &c.Budget,
		&c.StartsAt, &c.EndsAt,
		&c.InfluencerCount, &c.VideoCount, &c.TotalSpend, &c.TotalRevenue,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx, campaignSelect+` WHERE c.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, campaignSelect+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, description, status, budget, starts_at, ends_at,
		       created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, c.ID, c.Name, c.Description, c.Status, c.Budget, c.StartsAt, c.EndsAt,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET name = $1, description = $2, budget = $3,
		       starts_at = $4, ends_at = $5, updated_at = $6
		WHERE id = $7
	`, c.Name, c.Description, c.Budget, c.StartsAt, c.EndsAt, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

const videoColumns = `id, influencer_id, campaign_id, platform, url, COALESCE(title,''),
       views, likes, comments, published_at, scraped_at, created_at, updated_at`

func scanVideo(row interface{ Scan(...any) error }) (*domain.Video, error) {
	v := &domain.Video{}
	err := row.Scan(
		&v.ID, &v.InfluencerID, &v.CampaignID, &v.Platform, &v.URL, &v.Title,
		&v.Views, &v.Likes, &v.Comments, &v.PublishedAt, &v.ScrapedAt,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *CampaignRepo) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	v, err := scanVideo(r.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, campaign.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return v, nil
}

func (r *CampaignRepo) ListVideos(ctx context.Context, campaignID, influencerID string) ([]domain.Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos WHERE TRUE`
	args := []interface{}{}
	idx := 1
	if campaignID != "" {
		q += fmt.Sprintf(" AND campaign_id = $%d", idx)
		args = append(args, campaignID)
		idx++
	}
	if influencerID != "" {
		q += fmt.Sprintf(" AND influencer_id = $%d", idx)
		args = append(args, influencerID)
		idx++
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var out []domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) CreateVideo(ctx context.Context, v *domain.Video) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, influencer_id, campaign_id, platform, url, title,
		       views, likes, comments, published_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, v.ID, v.InfluencerID, v.CampaignID, v.Platform, v.URL, v.Title,
		v.Views, v.Likes, v.Comments, v.PublishedAt, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *CampaignRepo) UpdateVideoMetrics(ctx context.Context, id string, views, likes, comments int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE videos SET views = $1, likes = $2, comments = $3,
		       scraped_at = NOW(), updated_at = NOW()
		WHERE id = $4
	`, views, likes, comments, id)
	if err != nil {
		return fmt.Errorf("update video metrics: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrVideoNotFound
	}
	return nil
}

func (r *CampaignRepo) DeleteVideo(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrVideoNotFound
	}
	return nil
}
