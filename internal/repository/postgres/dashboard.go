package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumina/partnerdesk/internal/domain"
)

// DashboardRepo aggregates cross-table stats for the overview screen.
type DashboardRepo struct{ db *sql.DB }

// NewDashboardRepo creates a Postgres-backed stats aggregator.
func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// Stats collects the overview snapshot. The queries run sequentially on
// one connection; the screen tolerates slight skew between them.
func (r *DashboardRepo) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		InfluencersByStatus: map[string]int{},
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM influencers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count influencers: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan influencer count: %w", err)
		}
		stats.InfluencersByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	singles := []struct {
		dest  interface{}
		query string
	}{
		{&stats.ActiveWorkflows,
			`SELECT COUNT(*) FROM partnership_workflows WHERE status = 'active'`},
		{&stats.ActiveCampaigns,
			`SELECT COUNT(*) FROM campaigns WHERE status = 'running'`},
		{&stats.TrackedVideos,
			`SELECT COUNT(*) FROM videos`},
		{&stats.PendingCommissions,
			`SELECT COUNT(*) FROM payments WHERE status = 'pending'`},
		{&stats.PendingCommissionAmount,
			`SELECT COALESCE(SUM(commission),0) FROM payments WHERE status = 'pending'`},
		{&stats.PaidOutAmount,
			`SELECT COALESCE(SUM(commission),0) FROM payments WHERE status = 'paid'`},
		{&stats.AttributedRevenue,
			`SELECT COALESCE(SUM(order_total),0) FROM payments`},
		{&stats.EmailsLast7Days,
			`SELECT COUNT(*) FROM emails WHERE received_at > NOW() - INTERVAL '7 days'`},
		{&stats.PendingNotifications,
			`SELECT COUNT(*) FROM workflow_notifications WHERE status = 'pending'`},
		{&stats.ImportQueueDepth,
			`SELECT COUNT(*) FROM influencers WHERE status = 'import_pending'`},
		{&stats.CouponsIssued,
			`SELECT COUNT(*) FROM coupons`},
	}
	for _, q := range singles {
		if err := r.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("dashboard stat: %w", err)
		}
	}

	return stats, nil
}
