package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/service/coupon"
)

// HandleListCoupons returns coupons, optionally scoped to an influencer.
//
//	GET /api/coupons?influencer_id=
func (h *Handlers) HandleListCoupons(w http.ResponseWriter, r *http.Request) {
	items, err := h.coupons.List(r.Context(), r.URL.Query().Get("influencer_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Coupon{}
	}
	httputil.OK(w, map[string]interface{}{"coupons": items})
}

// HandleCreateCoupon issues a discount code on the storefront and records it.
//
//	POST /api/coupons
func (h *Handlers) HandleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var input coupon.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.coupons.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

// HandleGetCoupon returns a coupon by id.
//
//	GET /api/coupons/{id}
func (h *Handlers) HandleGetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

// HandleDeleteCoupon retires a code on the storefront and locally.
//
//	DELETE /api/coupons/{code}
func (h *Handlers) HandleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.DeleteByCode(r.Context(), chi.URLParam(r, "code")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}
