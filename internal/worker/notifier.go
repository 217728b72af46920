package worker

import (
	"context"
	"log"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/logger"
)

const (
	// DefaultNotifierInterval is how often the outbox is drained when the
	// dispatcher runs as a loop instead of behind the cron endpoint.
	DefaultNotifierInterval = 30 * time.Second

	// defaultNotifierBatch bounds one drain cycle.
	defaultNotifierBatch = 50

	// defaultMaxAttempts is how many deliveries are tried before a
	// notification is parked as failed.
	defaultMaxAttempts = 5
)

// NotificationOutbox is the slice of the storage layer the dispatcher needs.
type NotificationOutbox interface {
	ListPending(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	RecordFailure(ctx context.Context, id, errMsg string, final bool) error
}

// NotificationSender delivers one rendered notification email.
type NotificationSender interface {
	Send(ctx context.Context, to, subject, body, threadID string) (gmailID, threadOut string, err error)
}

// NotificationDispatcher drains the workflow notification outbox. Rows are
// written in the same transaction as the workflow transition that caused
// them, so delivery is at-least-once: a crash after Send but before
// MarkSent re-sends on the next cycle.
type NotificationDispatcher struct {
	outbox      NotificationOutbox
	sender      NotificationSender
	batchSize   int
	maxAttempts int
	now         func() time.Time
}

// NewNotificationDispatcher creates a dispatcher with default batching.
func NewNotificationDispatcher(outbox NotificationOutbox, sender NotificationSender) *NotificationDispatcher {
	return &NotificationDispatcher{
		outbox:      outbox,
		sender:      sender,
		batchSize:   defaultNotifierBatch,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
}

// Tune overrides the batch size and attempt cap; non-positive values keep
// the defaults.
func (d *NotificationDispatcher) Tune(batchSize, maxAttempts int) {
	if batchSize > 0 {
		d.batchSize = batchSize
	}
	if maxAttempts > 0 {
		d.maxAttempts = maxAttempts
	}
}

// RunOnce drains one batch and returns how many notifications went out.
// Individual delivery failures are recorded and do not abort the batch.
func (d *NotificationDispatcher) RunOnce(ctx context.Context) (int, error) {
	pending, err := d.outbox.ListPending(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if _, _, err := d.sender.Send(ctx, n.Recipient, n.Subject, n.Body, ""); err != nil {
			final := n.Attempts+1 >= d.maxAttempts
			log.Printf("[worker.Notifier] delivery of %s (%s) to %s failed (attempt %d, final=%v): %v",
				n.ID, n.Kind, logger.RedactEmail(n.Recipient), n.Attempts+1, final, err)
			if rerr := d.outbox.RecordFailure(ctx, n.ID, err.Error(), final); rerr != nil {
				return sent, rerr
			}
			continue
		}
		if err := d.outbox.MarkSent(ctx, n.ID, d.now().UTC()); err != nil {
			return sent, err
		}
		sent++
	}

	if len(pending) > 0 {
		log.Printf("[worker.Notifier] drained %d pending, %d sent", len(pending), sent)
	}
	return sent, nil
}

// Start runs the dispatcher as a loop. It blocks until ctx is cancelled.
func (d *NotificationDispatcher) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultNotifierInterval
	}
	log.Printf("[worker.Notifier] starting (interval=%s, batch=%d)", interval, d.batchSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[worker.Notifier] stopping")
			return
		case <-ticker.C:
			if _, err := d.RunOnce(ctx); err != nil {
				log.Printf("[worker.Notifier] drain cycle failed: %v", err)
			}
		}
	}
}
