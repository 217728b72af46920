package prospect

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumina/partnerdesk/internal/domain"
)

const (
	jobKeyPrefix   = "prospect:job:"
	ownerKeyPrefix = "prospect:owner:"
	jobTTL         = 24 * time.Hour
)

// RedisStore keeps jobs in Redis with a 24h TTL, giving multi-instance
// deployments a shared registry that survives process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed job store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string      { return jobKeyPrefix + id }
func ownerKey(owner string) string { return ownerKeyPrefix + owner }

func (r *RedisStore) Create(ctx context.Context, job *domain.ProspectJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, jobKey(job.ID), data, jobTTL)
	pipe.SAdd(ctx, ownerKey(job.OwnerID), job.ID)
	pipe.Expire(ctx, ownerKey(job.OwnerID), jobTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Get(ctx context.Context, id string) (*domain.ProspectJob, error) {
	data, err := r.client.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job domain.ProspectJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

func (r *RedisStore) Update(ctx context.Context, id string, u JobUpdate) (*domain.ProspectJob, error) {
	job, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(job, u)
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	if err := r.client.Set(ctx, jobKey(id), data, jobTTL).Err(); err != nil {
		return nil, err
	}
	return job, nil
}

func (r *RedisStore) ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]domain.ProspectJob, error) {
	ids, err := r.client.SMembers(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	var out []domain.ProspectJob
	for _, id := range ids {
		job, err := r.Get(ctx, id)
		if err == ErrJobNotFound {
			// Job expired; drop the dangling index entry.
			r.client.SRem(ctx, ownerKey(ownerID), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if activeOnly && !job.Status.IsActive() {
			continue
		}
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
