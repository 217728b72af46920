package prospect

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/partnerdesk/internal/domain"
)

func storeImplementations(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client),
	}
}

func newJob(id, owner string, status domain.JobStatus, createdAt time.Time) *domain.ProspectJob {
	return &domain.ProspectJob{
		ID:        id,
		Type:      domain.JobProspector,
		OwnerID:   owner,
		Config:    domain.ProspectConfig{SeedHandle: "@seed", Platform: domain.PlatformInstagram, MaxItems: 10},
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestStoreCreateGet(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job := newJob("j1", "user-1", domain.JobPending, time.Now().UTC().Truncate(time.Second))
			require.NoError(t, store.Create(ctx, job))

			got, err := store.Get(ctx, "j1")
			require.NoError(t, err)
			assert.Equal(t, "user-1", got.OwnerID)
			assert.Equal(t, domain.JobPending, got.Status)
			assert.Equal(t, "@seed", got.Config.SeedHandle)

			_, err = store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrJobNotFound)
		})
	}
}

func TestStoreUpdateMergesPartialFields(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, newJob("j1", "user-1", domain.JobPending, time.Now().UTC())))

			running := domain.JobRunning
			scanned := 7
			got, err := store.Update(ctx, "j1", JobUpdate{Status: &running, ScannedItems: &scanned})
			require.NoError(t, err)
			assert.Equal(t, domain.JobRunning, got.Status)
			assert.Equal(t, 7, got.ScannedItems)
			// Untouched fields survive the merge.
			assert.Equal(t, "@seed", got.Config.SeedHandle)

			_, err = store.Update(ctx, "missing", JobUpdate{Status: &running})
			assert.ErrorIs(t, err, ErrJobNotFound)
		})
	}
}

func TestStoreListByOwner(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, store.Create(ctx, newJob("old", "user-1", domain.JobCompleted, base.Add(-time.Hour))))
			require.NoError(t, store.Create(ctx, newJob("new", "user-1", domain.JobRunning, base)))
			require.NoError(t, store.Create(ctx, newJob("other", "user-2", domain.JobPending, base)))

			all, err := store.ListByOwner(ctx, "user-1", false)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "new", all[0].ID, "newest first")

			active, err := store.ListByOwner(ctx, "user-1", true)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, "new", active[0].ID)

			none, err := store.ListByOwner(ctx, "user-3", false)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestMemoryStoreIsVolatile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newJob("j1", "user-1", domain.JobCompleted, time.Now())))

	// A fresh store models a process restart: nothing carries over.
	restarted := NewMemoryStore()
	jobs, err := restarted.ListByOwner(ctx, "user-1", false)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestRedisStoreSurvivesReconnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	first := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(first)
	require.NoError(t, store.Create(ctx, newJob("j1", "user-1", domain.JobCompleted, time.Now().UTC())))
	first.Close()

	second := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer second.Close()
	jobs, err := NewRedisStore(second).ListByOwner(ctx, "user-1", false)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
