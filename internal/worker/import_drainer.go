package worker

import (
	"context"
	"log"

	"github.com/lumina/partnerdesk/internal/domain"
)

// defaultDrainBatch bounds one drain cycle; the queue is FIFO so anything
// left over is picked up next run.
const defaultDrainBatch = 20

// ImportQueue is the slice of the influencer service the drainer needs.
type ImportQueue interface {
	ListPendingImport(ctx context.Context, limit int) ([]domain.Influencer, error)
	RecordMetrics(ctx context.Context, id string, followers int64, engagementRate float64, avgViews int64) error
	SetStatus(ctx context.Context, id string, status domain.InfluencerStatus) error
}

// ProfileFetcher resolves current public metrics for one handle.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, handle string, platform domain.SocialPlatform) (*domain.ScrapedProfile, error)
}

// ImportDrainer enriches import_pending influencers with scraped metrics
// and promotes the promising ones to suggestion. Profiles the provider
// cannot resolve stay queued and are retried on later cycles.
type ImportDrainer struct {
	queue     ImportQueue
	fetcher   ProfileFetcher
	batchSize int
}

// NewImportDrainer creates a drainer with the default batch size.
func NewImportDrainer(queue ImportQueue, fetcher ProfileFetcher) *ImportDrainer {
	return &ImportDrainer{queue: queue, fetcher: fetcher, batchSize: defaultDrainBatch}
}

// RunOnce processes one FIFO batch and returns how many profiles were
// enriched.
func (d *ImportDrainer) RunOnce(ctx context.Context) (int, error) {
	pending, err := d.queue.ListPendingImport(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, inf := range pending {
		p, err := d.fetcher.FetchProfile(ctx, inf.Handle, inf.Platform)
		if err != nil {
			log.Printf("[worker.ImportDrainer] fetch %s on %s failed, leaving queued: %v",
				inf.Handle, inf.Platform, err)
			continue
		}

		if err := d.queue.RecordMetrics(ctx, inf.ID, p.Followers, p.EngagementRate, p.AvgViews); err != nil {
			return processed, err
		}

		if err := d.queue.SetStatus(ctx, inf.ID, domain.InfluencerSuggestion); err != nil {
			return processed, err
		}
		processed++
	}

	if len(pending) > 0 {
		log.Printf("[worker.ImportDrainer] drained %d of %d queued", processed, len(pending))
	}
	return processed, nil
}
