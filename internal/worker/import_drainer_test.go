package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/lumina/partnerdesk/internal/domain"
)

type fakeImportQueue struct {
	pending  []domain.Influencer
	metrics  map[string]int64
	statuses map[string]domain.InfluencerStatus
}

func newFakeImportQueue(pending ...domain.Influencer) *fakeImportQueue {
	return &fakeImportQueue{
		pending:  pending,
		metrics:  make(map[string]int64),
		statuses: make(map[string]domain.InfluencerStatus),
	}
}

func (f *fakeImportQueue) ListPendingImport(ctx context.Context, limit int) ([]domain.Influencer, error) {
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeImportQueue) RecordMetrics(ctx context.Context, id string, followers int64, engagementRate float64, avgViews int64) error {
	f.metrics[id] = followers
	return nil
}

func (f *fakeImportQueue) SetStatus(ctx context.Context, id string, status domain.InfluencerStatus) error {
	f.statuses[id] = status
	return nil
}

type fakeFetcher struct {
	profiles map[string]*domain.ScrapedProfile
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, handle string, platform domain.SocialPlatform) (*domain.ScrapedProfile, error) {
	p, ok := f.profiles[handle]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return p, nil
}

func TestImportDrainerPromotesToSuggestion(t *testing.T) {
	queue := newFakeImportQueue(
		domain.Influencer{ID: "inf-1", Handle: "ana.fit", Platform: domain.PlatformInstagram},
		domain.Influencer{ID: "inf-2", Handle: "bia.cooks", Platform: domain.PlatformInstagram},
	)
	fetcher := &fakeFetcher{profiles: map[string]*domain.ScrapedProfile{
		"ana.fit":   {Handle: "ana.fit", Followers: 120000, EngagementRate: 4.2, AvgViews: 35000},
		"bia.cooks": {Handle: "bia.cooks", Followers: 800, EngagementRate: 0.4, AvgViews: 150},
	}}

	d := NewImportDrainer(queue, fetcher)
	processed, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2", processed)
	}
	for _, id := range []string{"inf-1", "inf-2"} {
		if queue.statuses[id] != domain.InfluencerSuggestion {
			t.Errorf("status[%s] = %s, want %s", id, queue.statuses[id], domain.InfluencerSuggestion)
		}
	}
	if queue.metrics["inf-1"] != 120000 {
		t.Errorf("metrics[inf-1] = %d, want 120000", queue.metrics["inf-1"])
	}
}

func TestImportDrainerLeavesUnresolvedQueued(t *testing.T) {
	queue := newFakeImportQueue(
		domain.Influencer{ID: "inf-1", Handle: "ghost", Platform: domain.PlatformInstagram},
		domain.Influencer{ID: "inf-2", Handle: "ana.fit", Platform: domain.PlatformInstagram},
	)
	fetcher := &fakeFetcher{profiles: map[string]*domain.ScrapedProfile{
		"ana.fit": {Handle: "ana.fit", Followers: 5000, EngagementRate: 2.0},
	}}

	d := NewImportDrainer(queue, fetcher)
	processed, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
	if _, touched := queue.statuses["inf-1"]; touched {
		t.Error("unresolved profile should keep its queued status")
	}
	if queue.statuses["inf-2"] != domain.InfluencerSuggestion {
		t.Errorf("status[inf-2] = %s, want %s", queue.statuses["inf-2"], domain.InfluencerSuggestion)
	}
}

func TestImportDrainerRespectsBatchSize(t *testing.T) {
	var pending []domain.Influencer
	profiles := make(map[string]*domain.ScrapedProfile)
	for _, h := range []string{"a", "b", "c"} {
		pending = append(pending, domain.Influencer{ID: "inf-" + h, Handle: h, Platform: domain.PlatformTikTok})
		profiles[h] = &domain.ScrapedProfile{Handle: h, Followers: 10000}
	}
	queue := newFakeImportQueue(pending...)

	d := NewImportDrainer(queue, &fakeFetcher{profiles: profiles})
	d.batchSize = 2

	processed, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2", processed)
	}
}
