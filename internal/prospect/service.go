package prospect

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
)

// Scraper finds creator profiles similar to a seed handle. Satisfied by the
// Apify client.
type Scraper interface {
	SimilarProfiles(ctx context.Context, seed string, platform domain.SocialPlatform, max int) ([]domain.ScrapedProfile, error)
}

// Drafter generates a first-contact outreach draft for a scraped profile.
// Satisfied by the Gemini client.
type Drafter interface {
	DraftOutreach(ctx context.Context, profile domain.ScrapedProfile) (string, error)
}

// Importer registers a scraped profile as an influencer suggestion.
// Satisfied by the influencer service; created=false means the handle was
// already known.
type Importer interface {
	ImportScrapedProfile(ctx context.Context, p domain.ScrapedProfile) (id string, created bool, err error)
}

// Service is the prospecting job registry. Start fires a background run and
// returns immediately; callers poll List for progress.
type Service struct {
	store    Store
	scraper  Scraper
	drafter  Drafter // nil when Gemini is not configured
	importer Importer
	timeout  time.Duration
	now      func() time.Time
}

// NewService creates a prospect service. drafter may be nil; runs then skip
// outreach drafting.
func NewService(store Store, scraper Scraper, drafter Drafter, importer Importer, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Service{
		store:    store,
		scraper:  scraper,
		drafter:  drafter,
		importer: importer,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Start validates the config, registers a pending job and launches the run
// in the background. The returned job is immediately queryable.
func (s *Service) Start(ctx context.Context, ownerID string, cfg domain.ProspectConfig) (*domain.ProspectJob, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}
	cfg.SeedHandle = strings.TrimSpace(cfg.SeedHandle)
	if cfg.SeedHandle == "" {
		return nil, fmt.Errorf("seed handle is required")
	}
	if cfg.Platform == "" {
		cfg.Platform = domain.PlatformInstagram
	}
	if cfg.MaxItems <= 0 || cfg.MaxItems > 100 {
		cfg.MaxItems = 20
	}

	job := &domain.ProspectJob{
		ID:        uuid.New().String(),
		Type:      domain.JobProspector,
		OwnerID:   ownerID,
		Config:    cfg,
		Status:    domain.JobPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("[prospect.Service] job %s queued (seed %s, max %d)", job.ID, cfg.SeedHandle, cfg.MaxItems)

	// The run outlives the HTTP request that started it.
	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.run(runCtx, job.ID, cfg)
	}()
	return job, nil
}

// Get returns a job, restricted to its owner.
func (s *Service) Get(ctx context.Context, ownerID, jobID string) (*domain.ProspectJob, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// List returns the owner's jobs, optionally restricted to active ones.
func (s *Service) List(ctx context.Context, ownerID string, activeOnly bool) ([]domain.ProspectJob, error) {
	return s.store.ListByOwner(ctx, ownerID, activeOnly)
}

func (s *Service) run(ctx context.Context, jobID string, cfg domain.ProspectConfig) {
	running := domain.JobRunning
	startedAt := s.now().UTC()
	if _, err := s.store.Update(ctx, jobID, JobUpdate{Status: &running, StartedAt: &startedAt}); err != nil {
		log.Printf("[prospect.Service] job %s vanished before start: %v", jobID, err)
		return
	}

	profiles, err := s.scraper.SimilarProfiles(ctx, cfg.SeedHandle, cfg.Platform, cfg.MaxItems)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("scrape: %v", err))
		return
	}

	var importedIDs []string
	drafts := make(map[string]string)
	scanned := 0
	for _, p := range profiles {
		scanned++
		sc := scanned
		imported := len(importedIDs)
		if _, err := s.store.Update(ctx, jobID, JobUpdate{ScannedItems: &sc, ImportedItems: &imported}); err != nil {
			log.Printf("[prospect.Service] job %s progress update failed: %v", jobID, err)
		}

		id, created, err := s.importer.ImportScrapedProfile(ctx, p)
		if err != nil {
			log.Printf("[prospect.Service] job %s: import %s failed: %v", jobID, p.Handle, err)
			continue
		}
		if !created {
			continue
		}
		importedIDs = append(importedIDs, id)

		if s.drafter != nil {
			draft, err := s.drafter.DraftOutreach(ctx, p)
			if err != nil {
				log.Printf("[prospect.Service] job %s: draft for %s failed: %v", jobID, p.Handle, err)
			} else {
				drafts[p.Handle] = draft
			}
		}
	}

	result := map[string]any{"imported_ids": importedIDs}
	if len(drafts) > 0 {
		result["drafts"] = drafts
	}
	completed := domain.JobCompleted
	completedAt := s.now().UTC()
	imported := len(importedIDs)
	if _, err := s.store.Update(ctx, jobID, JobUpdate{
		Status:        &completed,
		ScannedItems:  &scanned,
		ImportedItems: &imported,
		Result:        result,
		CompletedAt:   &completedAt,
	}); err != nil {
		log.Printf("[prospect.Service] job %s completion update failed: %v", jobID, err)
		return
	}
	log.Printf("[prospect.Service] job %s completed: scanned %d, imported %d", jobID, scanned, imported)
}

func (s *Service) fail(ctx context.Context, jobID, msg string) {
	failed := domain.JobFailed
	completedAt := s.now().UTC()
	if _, err := s.store.Update(ctx, jobID, JobUpdate{
		Status:      &failed,
		Error:       &msg,
		CompletedAt: &completedAt,
	}); err != nil {
		log.Printf("[prospect.Service] job %s failure update failed: %v", jobID, err)
		return
	}
	log.Printf("[prospect.Service] job %s failed: %s", jobID, msg)
}
