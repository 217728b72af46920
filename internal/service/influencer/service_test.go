package influencer_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/influencer"
)

// memRepo is an in-memory influencer repository for unit testing.
type memRepo struct {
	mu          sync.Mutex
	influencers map[string]*domain.Influencer
	seq         int
}

func newMemRepo() *memRepo {
	return &memRepo{influencers: make(map[string]*domain.Influencer)}
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inf, ok := m.influencers[id]
	if !ok {
		return nil, influencer.ErrNotFound
	}
	cp := *inf
	return &cp, nil
}

func (m *memRepo) GetByHandle(_ context.Context, handle string, platform domain.SocialPlatform) (*domain.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inf := range m.influencers {
		if inf.Handle == handle && inf.Platform == platform {
			cp := *inf
			return &cp, nil
		}
	}
	return nil, influencer.ErrNotFound
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*domain.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inf := range m.influencers {
		if inf.Email == email {
			cp := *inf
			return &cp, nil
		}
	}
	return nil, influencer.ErrNotFound
}

func (m *memRepo) List(_ context.Context, f influencer.ListFilter) ([]domain.Influencer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Influencer
	for _, inf := range m.influencers {
		if f.Status != "" && string(inf.Status) != f.Status {
			continue
		}
		out = append(out, *inf)
	}
	return out, len(out), nil
}

func (m *memRepo) ListPendingImport(_ context.Context, limit int) ([]domain.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Influencer
	for _, inf := range m.influencers {
		if inf.Status == domain.InfluencerImportPending {
			out = append(out, *inf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, inf *domain.Influencer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.influencers {
		if existing.Handle == inf.Handle && existing.Platform == inf.Platform {
			return influencer.ErrDuplicateHandle
		}
	}
	cp := *inf
	// Strictly increasing creation times so FIFO ordering is observable.
	m.seq++
	cp.CreatedAt = time.Unix(int64(m.seq), 0)
	m.influencers[cp.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, id string, u influencer.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inf, ok := m.influencers[id]
	if !ok {
		return influencer.ErrNotFound
	}
	if u.Name != nil {
		inf.Name = *u.Name
	}
	if u.Email != nil {
		inf.Email = *u.Email
	}
	if u.Notes != nil {
		inf.Notes = *u.Notes
	}
	if u.CommissionRate != nil {
		inf.CommissionRate = *u.CommissionRate
	}
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, status domain.InfluencerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inf, ok := m.influencers[id]
	if !ok {
		return influencer.ErrNotFound
	}
	inf.Status = status
	return nil
}

func (m *memRepo) UpdateMetrics(_ context.Context, id string, followers int64, engagementRate float64, avgViews int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inf, ok := m.influencers[id]
	if !ok {
		return influencer.ErrNotFound
	}
	inf.Followers = followers
	inf.EngagementRate = engagementRate
	inf.AvgViews = avgViews
	return nil
}

func TestCreate(t *testing.T) {
	svc := influencer.NewService(newMemRepo())
	inf, err := svc.Create(context.Background(), influencer.CreateInput{
		Name: "Maria", Email: "Maria@Example.com", Handle: "Maria", Platform: "instagram",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inf.Status != domain.InfluencerSuggestion {
		t.Fatalf("expected suggestion, got %s", inf.Status)
	}
	if inf.Handle != "@maria" {
		t.Fatalf("expected normalized handle @maria, got %s", inf.Handle)
	}
	if inf.Email != "maria@example.com" {
		t.Fatalf("expected lowercased email, got %s", inf.Email)
	}
	if inf.PortalToken == "" || strings.ContainsAny(inf.PortalToken, "+/=") {
		t.Fatalf("expected URL-safe portal token, got %q", inf.PortalToken)
	}
}

func TestCreateInvalidStatus(t *testing.T) {
	svc := influencer.NewService(newMemRepo())
	_, err := svc.Create(context.Background(), influencer.CreateInput{
		Handle: "@x", Status: "vibing",
	})
	if !errors.Is(err, influencer.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreateDuplicateHandle(t *testing.T) {
	svc := influencer.NewService(newMemRepo())
	if _, err := svc.Create(context.Background(), influencer.CreateInput{Handle: "@dup"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), influencer.CreateInput{Handle: "@dup"})
	if !errors.Is(err, influencer.ErrDuplicateHandle) {
		t.Fatalf("expected ErrDuplicateHandle, got %v", err)
	}
}

func TestPendingImportQueueFIFO(t *testing.T) {
	repo := newMemRepo()
	svc := influencer.NewService(repo)

	for _, h := range []string{"@x", "@y", "@z"} {
		_, err := svc.Create(context.Background(), influencer.CreateInput{
			Handle: h, Status: string(domain.InfluencerImportPending),
		})
		if err != nil {
			t.Fatalf("create %s: %v", h, err)
		}
	}

	queue, err := svc.ListPendingImport(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(queue))
	}
	if queue[0].Handle != "@x" || queue[1].Handle != "@y" || queue[2].Handle != "@z" {
		t.Fatalf("expected FIFO order by creation time, got %s %s %s",
			queue[0].Handle, queue[1].Handle, queue[2].Handle)
	}

	// After processing, the influencer leaves the queue.
	if err := svc.SetStatus(context.Background(), queue[0].ID, domain.InfluencerSuggestion); err != nil {
		t.Fatalf("set status: %v", err)
	}
	queue, _ = svc.ListPendingImport(context.Background(), 10)
	for _, inf := range queue {
		if inf.Handle == "@x" {
			t.Fatal("processed influencer must not appear in the pending queue")
		}
	}
}

func TestFindOrCreateByEmail(t *testing.T) {
	repo := newMemRepo()
	svc := influencer.NewService(repo)

	inf, created, err := svc.FindOrCreateByEmail(context.Background(), "New.Creator@Example.com", "")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if !created {
		t.Fatal("expected a new influencer")
	}
	if inf.Status != domain.InfluencerImportPending {
		t.Fatalf("auto-created influencer should be import_pending, got %s", inf.Status)
	}
	if inf.Source != "email_auto" {
		t.Fatalf("expected email_auto source, got %s", inf.Source)
	}

	again, created, err := svc.FindOrCreateByEmail(context.Background(), "new.creator@example.com", "")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created {
		t.Fatal("second call must reuse the existing influencer")
	}
	if again.ID != inf.ID {
		t.Fatalf("expected same influencer, got %s vs %s", again.ID, inf.ID)
	}
}

// wrappingRepo decorates lookup misses the way a SQL repository would,
// wrapping the sentinel with call-site context.
type wrappingRepo struct{ *memRepo }

func (w *wrappingRepo) GetByEmail(ctx context.Context, email string) (*domain.Influencer, error) {
	inf, err := w.memRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get influencer by email: %w", err)
	}
	return inf, nil
}

func TestFindOrCreateByEmailWrappedNotFound(t *testing.T) {
	svc := influencer.NewService(&wrappingRepo{newMemRepo()})

	inf, created, err := svc.FindOrCreateByEmail(context.Background(), "wrapped@example.com", "")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if !created {
		t.Fatal("a wrapped not-found must still create the influencer")
	}
	if inf.Email != "wrapped@example.com" {
		t.Fatalf("unexpected email %s", inf.Email)
	}
}
