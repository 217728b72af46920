package campaign

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
)

// Service implements campaign and video-tracking business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput holds the fields for a new campaign.
type CreateInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Create registers a new campaign in draft status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Campaign, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Budget < 0 {
		return nil, fmt.Errorf("budget cannot be negative")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, fmt.Errorf("ends_at precedes starts_at")
	}
	now := s.now().UTC()
	c := &domain.Campaign{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      domain.CampaignDraft,
		Budget:      input.Budget,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("[campaign.Service] created %s (%s)", c.ID, c.Name)
	return c, nil
}

// Get returns a campaign with rollup stats.
func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, id)
}

// List returns all campaigns with rollup stats.
func (s *Service) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.repo.List(ctx)
}

// Update edits mutable campaign fields. Finished campaigns are immutable.
func (s *Service) Update(ctx context.Context, id string, input CreateInput) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CampaignFinished {
		return nil, ErrFinished
	}
	if strings.TrimSpace(input.Name) != "" {
		c.Name = strings.TrimSpace(input.Name)
	}
	c.Description = input.Description
	if input.Budget >= 0 {
		c.Budget = input.Budget
	}
	c.StartsAt = input.StartsAt
	c.EndsAt = input.EndsAt
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetStatus moves a campaign through its lifecycle. Finished is terminal.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	switch status {
	case domain.CampaignDraft, domain.CampaignRunning, domain.CampaignFinished, domain.CampaignCancelled:
	default:
		return fmt.Errorf("invalid campaign status %q", status)
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == domain.CampaignFinished {
		return ErrFinished
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// TrackVideoInput registers a published promotional post for tracking.
type TrackVideoInput struct {
	InfluencerID string     `json:"influencer_id"`
	CampaignID   string     `json:"campaign_id"`
	Platform     string     `json:"platform"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	PublishedAt  *time.Time `json:"published_at"`
}

// TrackVideo adds a video to the tracking list.
func (s *Service) TrackVideo(ctx context.Context, input TrackVideoInput) (*domain.Video, error) {
	if input.InfluencerID == "" {
		return nil, fmt.Errorf("influencer id is required")
	}
	if input.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	var campaignID *string
	if input.CampaignID != "" {
		if _, err := s.repo.Get(ctx, input.CampaignID); err != nil {
			return nil, err
		}
		campaignID = &input.CampaignID
	}
	platform := domain.PlatformInstagram
	if input.Platform != "" {
		platform = domain.SocialPlatform(input.Platform)
	}
	now := s.now().UTC()
	v := &domain.Video{
		ID:           uuid.New().String(),
		InfluencerID: input.InfluencerID,
		CampaignID:   campaignID,
		Platform:     platform,
		URL:          input.URL,
		Title:        input.Title,
		PublishedAt:  input.PublishedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateVideo(ctx, v); err != nil {
		return nil, err
	}
	log.Printf("[campaign.Service] tracking video %s for influencer %s", v.ID, v.InfluencerID)
	return v, nil
}

// ListVideos returns tracked videos, optionally filtered.
func (s *Service) ListVideos(ctx context.Context, campaignID, influencerID string) ([]domain.Video, error) {
	return s.repo.ListVideos(ctx, campaignID, influencerID)
}

// RecordVideoMetrics stores a fresh scrape of a tracked video.
func (s *Service) RecordVideoMetrics(ctx context.Context, id string, views, likes, comments int64) error {
	if _, err := s.repo.GetVideo(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateVideoMetrics(ctx, id, views, likes, comments)
}

// UntrackVideo removes a video from tracking.
func (s *Service) UntrackVideo(ctx context.Context, id string) error {
	return s.repo.DeleteVideo(ctx, id)
}
