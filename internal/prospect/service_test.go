package prospect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/partnerdesk/internal/domain"
)

type fakeScraper struct {
	profiles []domain.ScrapedProfile
	err      error
}

func (f *fakeScraper) SimilarProfiles(_ context.Context, _ string, _ domain.SocialPlatform, max int) ([]domain.ScrapedProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.profiles) > max {
		return f.profiles[:max], nil
	}
	return f.profiles, nil
}

type fakeImporter struct {
	mu    sync.Mutex
	seen  map[string]bool
	calls int
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{seen: make(map[string]bool)}
}

func (f *fakeImporter) ImportScrapedProfile(_ context.Context, p domain.ScrapedProfile) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.seen[p.Handle] {
		return "", false, nil
	}
	f.seen[p.Handle] = true
	return "inf-" + p.Handle, true, nil
}

type fakeDrafter struct{}

func (fakeDrafter) DraftOutreach(_ context.Context, p domain.ScrapedProfile) (string, error) {
	return "Oi " + p.Name + "!", nil
}

func waitForTerminal(t *testing.T, store Store, jobID string) *domain.ProspectJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(context.Background(), jobID)
		require.NoError(t, err)
		if !job.Status.IsActive() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal status")
	return nil
}

func TestStartRunsJobToCompletion(t *testing.T) {
	store := NewMemoryStore()
	scraper := &fakeScraper{profiles: []domain.ScrapedProfile{
		{Handle: "@a", Name: "A", Platform: domain.PlatformInstagram, Followers: 10000},
		{Handle: "@b", Name: "B", Platform: domain.PlatformInstagram, Followers: 20000},
		{Handle: "@a", Name: "A again"},
	}}
	svc := NewService(store, scraper, fakeDrafter{}, newFakeImporter(), time.Minute)

	job, err := svc.Start(context.Background(), "user-1", domain.ProspectConfig{SeedHandle: "@seed", MaxItems: 10})
	require.NoError(t, err)

	// Immediately queryable before the background run finishes.
	got, err := svc.Get(context.Background(), "user-1", job.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.IsActive())

	final := waitForTerminal(t, store, job.ID)
	assert.Equal(t, domain.JobCompleted, final.Status)
	assert.Equal(t, 3, final.ScannedItems)
	assert.Equal(t, 2, final.ImportedItems, "duplicate handle must not import twice")
	require.NotNil(t, final.CompletedAt)

	ids, ok := final.Result["imported_ids"].([]string)
	if !ok {
		// Redis-backed stores round-trip through JSON.
		raw := final.Result["imported_ids"].([]any)
		for _, v := range raw {
			ids = append(ids, v.(string))
		}
	}
	assert.Len(t, ids, 2)
	drafts, ok := final.Result["drafts"].(map[string]string)
	if ok {
		assert.Contains(t, drafts["@a"], "Oi A")
	}
}

func TestStartFailsJobOnScrapeError(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, &fakeScraper{err: errors.New("actor quota exceeded")}, nil, newFakeImporter(), time.Minute)

	job, err := svc.Start(context.Background(), "user-1", domain.ProspectConfig{SeedHandle: "@seed"})
	require.NoError(t, err)

	final := waitForTerminal(t, store, job.ID)
	assert.Equal(t, domain.JobFailed, final.Status)
	assert.Contains(t, final.Error, "actor quota exceeded")
	require.NotNil(t, final.CompletedAt)
}

func TestStartValidatesInput(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeScraper{}, nil, newFakeImporter(), time.Minute)
	_, err := svc.Start(context.Background(), "", domain.ProspectConfig{SeedHandle: "@x"})
	assert.Error(t, err)
	_, err = svc.Start(context.Background(), "user-1", domain.ProspectConfig{SeedHandle: "  "})
	assert.Error(t, err)
}

func TestGetScopedToOwner(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, &fakeScraper{}, nil, newFakeImporter(), time.Minute)
	job, err := svc.Start(context.Background(), "user-1", domain.ProspectConfig{SeedHandle: "@seed"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "someone-else", job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListActiveFiltersTerminalJobs(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, &fakeScraper{profiles: nil}, nil, newFakeImporter(), time.Minute)

	job, err := svc.Start(context.Background(), "user-1", domain.ProspectConfig{SeedHandle: "@seed"})
	require.NoError(t, err)
	waitForTerminal(t, store, job.ID)

	active, err := svc.List(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(context.Background(), "user-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
