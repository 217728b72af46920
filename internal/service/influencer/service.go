package influencer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
)

// Service implements influencer business logic.
type Service struct {
	repo Repository
}

// NewService creates an influencer service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput holds the fields for registering a new influencer.
type CreateInput struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Handle         string  `json:"handle"`
	Platform       string  `json:"platform"`
	Status         string  `json:"status"`
	CommissionRate float64 `json:"commission_rate"`
	Notes          string  `json:"notes"`
	Source         string  `json:"source"`
}

// Create validates and persists a new influencer. The portal token is
// generated here and never changes for the influencer's lifetime.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Influencer, error) {
	if input.Handle == "" {
		return nil, fmt.Errorf("handle is required")
	}
	if input.Name == "" {
		input.Name = strings.TrimPrefix(input.Handle, "@")
	}

	status := domain.InfluencerSuggestion
	if input.Status != "" {
		status = domain.InfluencerStatus(input.Status)
		if !domain.ValidInfluencerStatus(status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
		}
	}
	platform := domain.PlatformInstagram
	if input.Platform != "" {
		platform = domain.SocialPlatform(input.Platform)
	}
	source := input.Source
	if source == "" {
		source = "manual"
	}

	token, err := generatePortalToken()
	if err != nil {
		return nil, fmt.Errorf("generate portal token: %w", err)
	}

	inf := &domain.Influencer{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Handle:         normalizeHandle(input.Handle),
		Platform:       platform,
		Status:         status,
		PortalToken:    token,
		CommissionRate: input.CommissionRate,
		Notes:          input.Notes,
		Source:         source,
	}
	if err := s.repo.Create(ctx, inf); err != nil {
		return nil, err
	}
	log.Printf("[influencer.Service] created %s (%s, %s)", inf.ID, inf.Handle, inf.Status)
	return inf, nil
}

// Get returns a single influencer.
func (s *Service) Get(ctx context.Context, id string) (*domain.Influencer, error) {
	return s.repo.Get(ctx, id)
}

// List returns influencers matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Influencer, int, error) {
	return s.repo.List(ctx, f)
}

// ListPendingImport returns the import queue in FIFO order.
func (s *Service) ListPendingImport(ctx context.Context, limit int) ([]domain.Influencer, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListPendingImport(ctx, limit)
}

// Update modifies mutable influencer fields.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	return s.repo.Update(ctx, id, u)
}

// SetStatus moves the influencer to the given lifecycle status.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.InfluencerStatus) error {
	if !domain.ValidInfluencerStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// RecordMetrics writes a fresh scrape result onto the influencer.
func (s *Service) RecordMetrics(ctx context.Context, id string, followers int64, engagementRate float64, avgViews int64) error {
	return s.repo.UpdateMetrics(ctx, id, followers, engagementRate, avgViews)
}

// FindOrCreateByEmail links an inbound email sender to an influencer,
// creating one in import_pending status when no match exists. The returned
// bool is true when a new record was created.
func (s *Service) FindOrCreateByEmail(ctx context.Context, email, name string) (*domain.Influencer, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, fmt.Errorf("email is required")
	}

	inf, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return inf, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	created, err := s.Create(ctx, CreateInput{
		Name:   name,
		Email:  email,
		Handle: "@" + strings.SplitN(email, "@", 2)[0],
		Status: string(domain.InfluencerImportPending),
		Source: "email_auto",
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// ImportScrapedProfile registers a prospected profile as a suggestion. A
// handle already on file is skipped, not an error; created reports whether a
// new record was made.
func (s *Service) ImportScrapedProfile(ctx context.Context, p domain.ScrapedProfile) (string, bool, error) {
	inf, err := s.Create(ctx, CreateInput{
		Name:     p.Name,
		Handle:   p.Handle,
		Platform: string(p.Platform),
		Source:   "prospector",
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateHandle) {
			return "", false, nil
		}
		return "", false, err
	}
	if p.Followers > 0 || p.EngagementRate > 0 || p.AvgViews > 0 {
		if err := s.repo.UpdateMetrics(ctx, inf.ID, p.Followers, p.EngagementRate, p.AvgViews); err != nil {
			log.Printf("[influencer.Service] metrics for %s not stored: %v", inf.ID, err)
		}
	}
	return inf.ID, true, nil
}

func normalizeHandle(handle string) string {
	handle = strings.TrimSpace(strings.ToLower(handle))
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle
}

// generatePortalToken returns a URL-safe opaque credential.
func generatePortalToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
