package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/service/partnership"
)

// HandleCreatePartnership opens a new negotiation for an influencer.
//
//	POST /api/influencers/{id}/partnerships
func (h *Handlers) HandleCreatePartnership(w http.ResponseWriter, r *http.Request) {
	var input partnership.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	wf, err := h.partnerships.Create(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, wf)
}

// HandleListPartnerships returns an influencer's negotiation history,
// newest first.
//
//	GET /api/influencers/{id}/partnerships
func (h *Handlers) HandleListPartnerships(w http.ResponseWriter, r *http.Request) {
	items, err := h.partnerships.ListByInfluencer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.PartnershipWorkflow{}
	}
	httputil.OK(w, map[string]interface{}{"partnerships": items})
}

// HandleGetPartnership returns a single workflow by id.
//
//	GET /api/partnerships/{id}
func (h *Handlers) HandleGetPartnership(w http.ResponseWriter, r *http.Request) {
	wf, err := h.partnerships.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, wf)
}

// HandleAcceptPartnership accepts the current proposal and advances the
// workflow to fulfilment.
//
//	POST /api/partnerships/{id}/accept
func (h *Handlers) HandleAcceptPartnership(w http.ResponseWriter, r *http.Request) {
	h.applyPartnershipAction(w, r, func(id string) error {
		return h.partnerships.Accept(r.Context(), id)
	})
}

// HandleRenegotiatePartnership records a counter-offer price.
//
//	POST /api/partnerships/{id}/renegotiate
func (h *Handlers) HandleRenegotiatePartnership(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Price float64 `json:"price"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	h.applyPartnershipAction(w, r, func(id string) error {
		return h.partnerships.Renegotiate(r.Context(), id, input.Price)
	})
}

// HandleCancelPartnership cancels an active workflow.
//
//	POST /api/partnerships/{id}/cancel
func (h *Handlers) HandleCancelPartnership(w http.ResponseWriter, r *http.Request) {
	h.applyPartnershipAction(w, r, func(id string) error {
		return h.partnerships.Cancel(r.Context(), id)
	})
}

// HandleCompleteStep stamps a fulfilment step as done.
//
//	POST /api/partnerships/{id}/steps/{step}/complete
func (h *Handlers) HandleCompleteStep(w http.ResponseWriter, r *http.Request) {
	step, ok := parseIntParam(w, r, "step")
	if !ok {
		return
	}
	h.applyPartnershipAction(w, r, func(id string) error {
		return h.partnerships.CompleteStep(r.Context(), id, step)
	})
}

// applyPartnershipAction runs a transition and responds with the refreshed
// workflow so clients never render stale step state.
func (h *Handlers) applyPartnershipAction(w http.ResponseWriter, r *http.Request, action func(id string) error) {
	id := chi.URLParam(r, "id")
	if err := action(id); err != nil {
		respondServiceError(w, err)
		return
	}
	wf, err := h.partnerships.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, wf)
}
