package campaign

import (
	"context"

	"github.com/lumina/partnerdesk/internal/domain"
)

// Repository defines the data access contract for campaigns and tracked
// videos.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns campaigns with rollup stats populated.
	List(ctx context.Context) ([]domain.Campaign, error)

	Create(ctx context.Context, c *domain.Campaign) error
	Update(ctx context.Context, c *domain.Campaign) error
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus) error

	GetVideo(ctx context.Context, id string) (*domain.Video, error)
	ListVideos(ctx context.Context, campaignID, influencerID string) ([]domain.Video, error)
	CreateVideo(ctx context.Context, v *domain.Video) error
	UpdateVideoMetrics(ctx context.Context, id string, views, likes, comments int64) error
	DeleteVideo(ctx context.Context, id string) error
}
