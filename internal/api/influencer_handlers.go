package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/service/influencer"
)

// HandleListInfluencers returns influencers with filters and pagination.
//
//	GET /api/influencers?status=&platform=&search=&page=&limit=
func (h *Handlers) HandleListInfluencers(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, 50, 200)
	q := r.URL.Query()

	items, total, err := h.influencers.List(r.Context(), influencer.ListFilter{
		Status:   q.Get("status"),
		Platform: q.Get("platform"),
		Search:   q.Get("search"),
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Influencer{}
	}
	httputil.OK(w, NewPaginatedResponse(items, params, total))
}

// HandleGetInfluencer returns a single influencer by id.
//
//	GET /api/influencers/{id}
func (h *Handlers) HandleGetInfluencer(w http.ResponseWriter, r *http.Request) {
	inf, err := h.influencers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, inf)
}

// HandleCreateInfluencer registers a new influencer.
//
//	POST /api/influencers
func (h *Handlers) HandleCreateInfluencer(w http.ResponseWriter, r *http.Request) {
	var input influencer.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	inf, err := h.influencers.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, inf)
}

// HandleUpdateInfluencer patches mutable influencer fields.
//
//	PATCH /api/influencers/{id}
func (h *Handlers) HandleUpdateInfluencer(w http.ResponseWriter, r *http.Request) {
	var fields influencer.UpdateFields
	if !httputil.Decode(w, r, &fields) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.influencers.Update(r.Context(), id, fields); err != nil {
		respondServiceError(w, err)
		return
	}
	inf, err := h.influencers.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, inf)
}

// HandleSetInfluencerStatus moves an influencer to a new pipeline status.
// Status changes tied to a negotiation go through the partnership
// endpoints instead; this is the manual back-office override.
//
//	PUT /api/influencers/{id}/status
func (h *Handlers) HandleSetInfluencerStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	if err := h.influencers.SetStatus(r.Context(), chi.URLParam(r, "id"), domain.InfluencerStatus(input.Status)); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": input.Status})
}
