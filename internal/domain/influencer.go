package domain

import "time"

// InfluencerStatus enumerates the lifecycle states of an influencer
// within the partnership pipeline.
type InfluencerStatus string

const (
	InfluencerSuggestion      InfluencerStatus = "suggestion"
	InfluencerImportPending   InfluencerStatus = "import_pending"
	InfluencerNegotiating     InfluencerStatus = "negotiating"
	InfluencerCounterProposal InfluencerStatus = "counter_proposal"
	InfluencerAgreed          InfluencerStatus = "agreed"
	InfluencerActive          InfluencerStatus = "active"
	InfluencerCancelled       InfluencerStatus = "cancelled"
)

// ValidInfluencerStatus reports whether s is a member of the closed
// status vocabulary.
func ValidInfluencerStatus(s InfluencerStatus) bool {
	switch s {
	case InfluencerSuggestion, InfluencerImportPending, InfluencerNegotiating,
		InfluencerCounterProposal, InfluencerAgreed, InfluencerActive, InfluencerCancelled:
		return true
	}
	return false
}

// SocialPlatform identifies the network an influencer handle belongs to.
type SocialPlatform string

const (
	PlatformInstagram SocialPlatform = "instagram"
	PlatformTikTok    SocialPlatform = "tiktok"
	PlatformYouTube   SocialPlatform = "youtube"
)

// Influencer represents a person/account being considered for or engaged
// in a paid promotional partnership. Influencers are never hard-deleted in
// the normal flow; the status field carries the soft lifecycle.
type Influencer struct {
	ID       string         `json:"id" db:"id"`
	Name     string         `json:"name" db:"name"`
	Email    string         `json:"email" db:"email"`
	Handle   string         `json:"handle" db:"handle"`
	Platform SocialPlatform `json:"platform" db:"platform"`

	Status InfluencerStatus `json:"status" db:"status"`

	// PortalToken grants limited self-service access to the influencer's
	// own active workflow. Opaque, unique, generated at creation.
	PortalToken string `json:"-" db:"portal_token"`

	Followers      int64   `json:"followers" db:"followers"`
	EngagementRate float64 `json:"engagement_rate" db:"engagement_rate"`
	AvgViews       int64   `json:"avg_views" db:"avg_views"`

	// CommissionRate is the fraction of attributed order revenue paid out
	// as commission (e.g. 0.10 for 10%).
	CommissionRate float64 `json:"commission_rate" db:"commission_rate"`

	Notes     string    `json:"notes" db:"notes"`
	Source    string    `json:"source" db:"source"` // manual | email_auto | prospector
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InPipeline reports whether the influencer is in an in-flight negotiation
// or fulfillment state (as opposed to a pre-pipeline or terminal one).
func (i *Influencer) InPipeline() bool {
	switch i.Status {
	case InfluencerNegotiating, InfluencerCounterProposal, InfluencerAgreed, InfluencerActive:
		return true
	}
	return false
}
