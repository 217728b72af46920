package worker

import (
	"context"
	"fmt"

	"github.com/lumina/partnerdesk/internal/apify"
	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/inbox"
)

// defaultMailSyncMax bounds how many messages one sync cycle ingests.
const defaultMailSyncMax = 100

// MailSyncJob adapts the inbox sync to the cron job shape.
type MailSyncJob struct {
	inbox *inbox.Service
	max   int
}

// NewMailSyncJob creates a mail sync job with the default batch size.
func NewMailSyncJob(svc *inbox.Service) *MailSyncJob {
	return &MailSyncJob{inbox: svc, max: defaultMailSyncMax}
}

// RunOnce ingests up to the configured number of new messages.
func (j *MailSyncJob) RunOnce(ctx context.Context) (int, error) {
	return j.inbox.Sync(ctx, j.max)
}

// ApifyProfileFetcher resolves single-profile metrics through the same
// scraping actor the prospector uses, limited to the seed handle itself.
type ApifyProfileFetcher struct {
	client *apify.Client
}

// NewApifyProfileFetcher wraps an Apify client as a ProfileFetcher.
func NewApifyProfileFetcher(client *apify.Client) *ApifyProfileFetcher {
	return &ApifyProfileFetcher{client: client}
}

// FetchProfile runs the actor for one handle and returns its metrics.
func (f *ApifyProfileFetcher) FetchProfile(ctx context.Context, handle string, platform domain.SocialPlatform) (*domain.ScrapedProfile, error) {
	profiles, err := f.client.SimilarProfiles(ctx, handle, platform, 1)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", handle, err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile data for %s on %s", handle, platform)
	}
	return &profiles[0], nil
}
