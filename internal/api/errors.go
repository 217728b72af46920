package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/prospect"
	"github.com/lumina/partnerdesk/internal/service/campaign"
	"github.com/lumina/partnerdesk/internal/service/coupon"
	"github.com/lumina/partnerdesk/internal/service/inbox"
	"github.com/lumina/partnerdesk/internal/service/influencer"
	"github.com/lumina/partnerdesk/internal/service/partnership"
	"github.com/lumina/partnerdesk/internal/service/payment"
	"github.com/lumina/partnerdesk/internal/shopify"
)

// respondServiceError is the single place where service-layer errors become
// HTTP responses. Every handler routes its errors through here so a given
// failure always maps to the same status code.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case isNotFound(err):
		httputil.NotFound(w, err.Error())

	case errors.Is(err, partnership.ErrInvalidPortalToken):
		// Indistinguishable from a missing resource to a token-guessing
		// client.
		httputil.NotFound(w, err.Error())

	case isConflict(err):
		httputil.Conflict(w, err.Error())

	case isStateViolation(err):
		httputil.Error(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, coupon.ErrStorefrontUnavailable):
		httputil.NotConfigured(w, "shopify")
	case errors.Is(err, inbox.ErrMailerUnavailable):
		httputil.NotConfigured(w, "gmail")
	case errors.Is(err, payment.ErrExportUnavailable):
		httputil.NotConfigured(w, "s3 export")

	case isUpstream(err):
		httputil.UpstreamError(w, "shopify", err)

	case errors.Is(err, context.DeadlineExceeded):
		httputil.Error(w, http.StatusGatewayTimeout, "request timed out")

	case errors.Unwrap(err) == nil:
		// Leaf errors out of a service are input validation messages;
		// infrastructure failures always arrive wrapped.
		httputil.BadRequest(w, err.Error())

	default:
		httputil.InternalError(w, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, influencer.ErrNotFound) ||
		errors.Is(err, partnership.ErrNotFound) ||
		errors.Is(err, partnership.ErrInfluencerNotFound) ||
		errors.Is(err, coupon.ErrNotFound) ||
		errors.Is(err, payment.ErrNotFound) ||
		errors.Is(err, payment.ErrBatchNotFound) ||
		errors.Is(err, inbox.ErrNotFound) ||
		errors.Is(err, inbox.ErrTemplateNotFound) ||
		errors.Is(err, campaign.ErrNotFound) ||
		errors.Is(err, campaign.ErrVideoNotFound) ||
		errors.Is(err, prospect.ErrJobNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, influencer.ErrDuplicateHandle) ||
		errors.Is(err, partnership.ErrActiveWorkflowExists) ||
		errors.Is(err, coupon.ErrDuplicateCode) ||
		errors.Is(err, payment.ErrDuplicateOrder)
}

func isStateViolation(err error) bool {
	return errors.Is(err, partnership.ErrWorkflowNotActive) ||
		errors.Is(err, partnership.ErrAlreadyCancelled) ||
		errors.Is(err, partnership.ErrInvalidStep) ||
		errors.Is(err, partnership.ErrFieldNotAllowed) ||
		errors.Is(err, influencer.ErrInvalidStatus) ||
		errors.Is(err, payment.ErrEmptyBatch) ||
		errors.Is(err, payment.ErrBatchNotOpen) ||
		errors.Is(err, campaign.ErrFinished) ||
		errors.Is(err, inbox.ErrMissingVariables)
}

func isUpstream(err error) bool {
	var apiErr *shopify.APIError
	return errors.As(err, &apiErr)
}
