package api

import (
	"context"
	"net/http"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/prospect"
	"github.com/lumina/partnerdesk/internal/service/campaign"
	"github.com/lumina/partnerdesk/internal/service/coupon"
	"github.com/lumina/partnerdesk/internal/service/inbox"
	"github.com/lumina/partnerdesk/internal/service/influencer"
	"github.com/lumina/partnerdesk/internal/service/partnership"
	"github.com/lumina/partnerdesk/internal/service/payment"
)

// DashboardSource aggregates cross-table stats for the overview screen.
type DashboardSource interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// CronJob is a scheduled unit of work triggered over HTTP. RunOnce returns
// how many items it processed.
type CronJob interface {
	RunOnce(ctx context.Context) (int, error)
}

// Locker serializes cron invocations across instances. TryLock returns
// ok=false when another instance holds the lock.
type Locker interface {
	TryLock(ctx context.Context, name string) (release func(), ok bool, err error)
}

// Handlers bundles the service dependencies for all HTTP endpoints.
// Optional integrations may be nil; their endpoints answer 503.
type Handlers struct {
	influencers  *influencer.Service
	partnerships *partnership.Service
	coupons      *coupon.Service
	payments     *payment.Service
	inbox        *inbox.Service
	campaigns    *campaign.Service
	prospector   *prospect.Service

	dashboard     DashboardSource
	locker        Locker
	ownerResolver func(*http.Request) string

	shopifyWebhookSecret string

	importDrainer CronJob
	mailSyncer    CronJob
	notifier      CronJob
}

// NewHandlers creates the handler set. Prospector and the cron jobs may be
// nil when their integrations are not configured.
func NewHandlers(
	influencers *influencer.Service,
	partnerships *partnership.Service,
	coupons *coupon.Service,
	payments *payment.Service,
	inboxSvc *inbox.Service,
	campaigns *campaign.Service,
	prospector *prospect.Service,
) *Handlers {
	return &Handlers{
		influencers:  influencers,
		partnerships: partnerships,
		coupons:      coupons,
		payments:     payments,
		inbox:        inboxSvc,
		campaigns:    campaigns,
		prospector:   prospector,
	}
}

// SetDashboardSource wires the stats aggregator.
func (h *Handlers) SetDashboardSource(src DashboardSource) { h.dashboard = src }

// SetLocker wires the distributed lock used by cron endpoints.
func (h *Handlers) SetLocker(l Locker) { h.locker = l }

// SetShopifyWebhookSecret wires the HMAC secret for order webhooks.
func (h *Handlers) SetShopifyWebhookSecret(secret string) { h.shopifyWebhookSecret = secret }

// SetCronJobs wires the scheduled jobs behind /cron endpoints.
func (h *Handlers) SetCronJobs(importDrainer, mailSyncer, notifier CronJob) {
	h.importDrainer = importDrainer
	h.mailSyncer = mailSyncer
	h.notifier = notifier
}
