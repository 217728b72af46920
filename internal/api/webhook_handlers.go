package api

import (
	"io"
	"log"
	"net/http"

	"github.com/lumina/partnerdesk/internal/gmailapi"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/pkg/logger"
	"github.com/lumina/partnerdesk/internal/service/payment"
	"github.com/lumina/partnerdesk/internal/shopify"
)

// HandleShopifyOrderWebhook records a commission for an order placed with
// an influencer's coupon. Orders without a known coupon are acknowledged
// and dropped; redeliveries of the same order are no-ops. Shopify retries
// on non-2xx, so only signature failures are rejected.
//
//	POST /webhooks/shopify/orders
func (h *Handlers) HandleShopifyOrderWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.BadRequest(w, "unreadable body")
		return
	}

	if !shopify.VerifyWebhookSignature(h.shopifyWebhookSecret, body, r.Header.Get("X-Shopify-Hmac-Sha256")) {
		httputil.Unauthorized(w, "invalid webhook signature")
		return
	}

	order, err := shopify.ParseOrder(body)
	if err != nil {
		httputil.BadRequest(w, "invalid order payload")
		return
	}

	recorded := 0
	for _, code := range order.DiscountCodes {
		c, err := h.coupons.GetByCode(r.Context(), code.Code)
		if err != nil {
			// Not one of ours; storewide promos flow through here too.
			continue
		}
		inf, err := h.influencers.Get(r.Context(), c.InfluencerID)
		if err != nil {
			log.Printf("[api.Webhooks] coupon %s references missing influencer %s", c.Code, c.InfluencerID)
			continue
		}
		if _, err := h.payments.RecordOrder(r.Context(), payment.RecordOrderInput{
			InfluencerID:   inf.ID,
			CouponCode:     c.Code,
			OrderID:        order.OrderID(),
			OrderTotal:     float64(order.TotalPrice),
			Currency:       order.Currency,
			CommissionRate: inf.CommissionRate,
			OrderedAt:      order.CreatedAt,
		}); err != nil {
			respondServiceError(w, err)
			return
		}
		recorded++
	}

	httputil.OK(w, map[string]int{"recorded": recorded})
}

// HandleGmailPushWebhook reacts to a Gmail Pub/Sub push by syncing the
// mailbox. The notification only says "something changed", so the handler
// runs the same idempotent sync the cron does.
//
//	POST /webhooks/gmail
func (h *Handlers) HandleGmailPushWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.BadRequest(w, "unreadable body")
		return
	}

	notif, err := gmailapi.ParsePushNotification(body)
	if err != nil {
		httputil.BadRequest(w, "invalid push payload")
		return
	}

	n, err := h.inbox.Sync(r.Context(), 100)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	log.Printf("[api.Webhooks] gmail push for %s (history %d): %d new messages",
		logger.RedactEmail(notif.EmailAddress), notif.HistoryID, n)
	httputil.OK(w, map[string]int{"new_messages": n})
}
