package worker

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumina/partnerdesk/internal/pkg/distlock"
)

// defaultLockTTL caps how long a crashed instance can hold a cron lock.
const defaultLockTTL = 5 * time.Minute

// CronLocker hands out short-lived distributed locks named after the cron
// job they guard. Redis is used when available; otherwise the lock degrades
// to a Postgres advisory lock on the same key.
type CronLocker struct {
	redisClient *redis.Client
	db          *sql.DB
	ttl         time.Duration
}

// NewCronLocker creates a locker over the given backends.
func NewCronLocker(redisClient *redis.Client, db *sql.DB) *CronLocker {
	return &CronLocker{redisClient: redisClient, db: db, ttl: defaultLockTTL}
}

// TryLock attempts a non-blocking acquire of the named lock. When ok is
// true the caller must invoke release once the job finishes.
func (l *CronLocker) TryLock(ctx context.Context, name string) (release func(), ok bool, err error) {
	lock := distlock.NewLock(l.redisClient, l.db, "cron:"+name, l.ttl)

	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	return func() {
		// Release on a fresh context so a cancelled request does not
		// strand the lock until TTL expiry.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil {
			log.Printf("[worker.CronLocker] release of %s failed: %v", name, err)
		}
	}, true, nil
}
