package domain

import "time"

// CampaignStatus enumerates marketing campaign states.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignRunning   CampaignStatus = "running"
	CampaignFinished  CampaignStatus = "finished"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Campaign groups partnership workflows and tracked videos under one
// marketing initiative with a budget.
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Status      CampaignStatus `json:"status" db:"status"`
	Budget      float64        `json:"budget" db:"budget"`

	StartsAt *time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   *time.Time `json:"ends_at" db:"ends_at"`

	// Rollup stats (read-only, populated by queries)
	InfluencerCount int     `json:"influencer_count" db:"influencer_count"`
	VideoCount      int     `json:"video_count" db:"video_count"`
	TotalSpend      float64 `json:"total_spend" db:"total_spend"`
	TotalRevenue    float64 `json:"total_revenue" db:"total_revenue"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Video is a tracked promotional post published by an influencer for a
// campaign. Metrics are refreshed from the scraping provider.
type Video struct {
	ID           string         `json:"id" db:"id"`
	InfluencerID string         `json:"influencer_id" db:"influencer_id"`
	CampaignID   *string        `json:"campaign_id" db:"campaign_id"`
	Platform     SocialPlatform `json:"platform" db:"platform"`
	URL          string         `json:"url" db:"url"`
	Title        string         `json:"title" db:"title"`

	Views    int64 `json:"views" db:"views"`
	Likes    int64 `json:"likes" db:"likes"`
	Comments int64 `json:"comments" db:"comments"`

	PublishedAt *time.Time `json:"published_at" db:"published_at"`
	ScrapedAt   *time.Time `json:"scraped_at" db:"scraped_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
