package domain

import "time"

// JobType labels asynchronous prospecting runs.
type JobType string

const (
	JobProspector JobType = "prospector"
)

// JobStatus enumerates the states of a prospect job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IsActive reports whether the job still needs polling.
func (s JobStatus) IsActive() bool {
	return s == JobPending || s == JobRunning
}

// ProspectConfig is the caller-supplied configuration for a prospector run.
type ProspectConfig struct {
	SeedHandle string         `json:"seed"`
	Platform   SocialPlatform `json:"platform"`
	MaxItems   int            `json:"max"`
}

// ScrapedProfile is a normalized creator profile returned by the scraping
// provider during a prospecting run.
type ScrapedProfile struct {
	Handle         string         `json:"handle"`
	Name           string         `json:"name"`
	Platform       SocialPlatform `json:"platform"`
	Followers      int64          `json:"followers"`
	EngagementRate float64        `json:"engagement_rate"`
	AvgViews       int64          `json:"avg_views"`
}

// ProspectJob is an ephemeral record of an asynchronous prospecting run.
// Jobs are owned by the user who created them and, in the default store,
// live only for the process lifetime.
type ProspectJob struct {
	ID      string         `json:"id"`
	Type    JobType        `json:"type"`
	OwnerID string         `json:"owner_id"`
	Config  ProspectConfig `json:"config"`
	Status  JobStatus      `json:"status"`

	ScannedItems  int    `json:"scanned_items"`
	ImportedItems int    `json:"imported_items"`
	Error         string `json:"error,omitempty"`

	// Result holds the job's final payload (imported influencer ids etc.).
	Result map[string]any `json:"result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
