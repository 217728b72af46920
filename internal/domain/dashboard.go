package domain

// DashboardStats is the aggregate snapshot behind the overview screen.
type DashboardStats struct {
	InfluencersByStatus map[string]int `json:"influencers_by_status"`
	ActiveWorkflows     int            `json:"active_workflows"`
	ActiveCampaigns     int            `json:"active_campaigns"`
	TrackedVideos       int            `json:"tracked_videos"`

	PendingCommissions      int     `json:"pending_commissions"`
	PendingCommissionAmount float64 `json:"pending_commission_amount"`
	PaidOutAmount           float64 `json:"paid_out_amount"`
	AttributedRevenue       float64 `json:"attributed_revenue"`

	EmailsLast7Days      int `json:"emails_last_7_days"`
	PendingNotifications int `json:"pending_notifications"`
	ImportQueueDepth     int `json:"import_queue_depth"`
	CouponsIssued        int `json:"coupons_issued"`
}
