package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumina/partnerdesk/internal/service/coupon"
	"github.com/lumina/partnerdesk/internal/service/inbox"
	"github.com/lumina/partnerdesk/internal/service/influencer"
	"github.com/lumina/partnerdesk/internal/service/partnership"
	"github.com/lumina/partnerdesk/internal/service/payment"
	"github.com/lumina/partnerdesk/internal/shopify"
)

func TestRespondServiceErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", influencer.ErrNotFound, http.StatusNotFound},
		{"batch not found", payment.ErrBatchNotFound, http.StatusNotFound},
		{"portal token reads as missing", partnership.ErrInvalidPortalToken, http.StatusNotFound},
		{"duplicate handle", influencer.ErrDuplicateHandle, http.StatusConflict},
		{"second active workflow", partnership.ErrActiveWorkflowExists, http.StatusConflict},
		{"replayed order", payment.ErrDuplicateOrder, http.StatusConflict},
		{"cancel twice", partnership.ErrAlreadyCancelled, http.StatusUnprocessableEntity},
		{"empty batch", payment.ErrEmptyBatch, http.StatusUnprocessableEntity},
		{"half-filled template", inbox.ErrMissingVariables, http.StatusUnprocessableEntity},
		{"shopify unconfigured", coupon.ErrStorefrontUnavailable, http.StatusServiceUnavailable},
		{"gmail unconfigured", inbox.ErrMailerUnavailable, http.StatusServiceUnavailable},
		{"storefront rejected", &shopify.APIError{StatusCode: 422, Body: "price rule invalid"}, http.StatusBadGateway},
		{"validation message", fmt.Errorf("handle is required"), http.StatusBadRequest},
		{"wrapped infrastructure failure", fmt.Errorf("get influencer: %w", fmt.Errorf("connection refused")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestInternalErrorsNeverLeakDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, fmt.Errorf("update workflow: %w", fmt.Errorf("pq: relation does not exist")))

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "internal server error" {
		t.Errorf("error = %q, want generic message", body["error"])
	}
}
