package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
)

// ownerID resolves the job owner for prospecting requests. Jobs are scoped
// per operator so one person's discovery runs never leak into another's
// list.
func (h *Handlers) ownerID(r *http.Request) string {
	if h.ownerResolver != nil {
		if id := h.ownerResolver(r); id != "" {
			return id
		}
	}
	return "operator"
}

// SetOwnerResolver wires session-based owner identification for prospect
// jobs. Without it every job belongs to the shared "operator" owner.
func (h *Handlers) SetOwnerResolver(fn func(*http.Request) string) { h.ownerResolver = fn }

// HandleStartProspecting launches a background discovery run.
//
//	POST /api/prospects
func (h *Handlers) HandleStartProspecting(w http.ResponseWriter, r *http.Request) {
	if h.prospector == nil {
		httputil.NotConfigured(w, "apify")
		return
	}
	var cfg domain.ProspectConfig
	if !httputil.Decode(w, r, &cfg) {
		return
	}
	job, err := h.prospector.Start(r.Context(), h.ownerID(r), cfg)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Accepted(w, job)
}

// HandleGetProspectJob polls a discovery run's progress.
//
//	GET /api/prospects/{id}
func (h *Handlers) HandleGetProspectJob(w http.ResponseWriter, r *http.Request) {
	if h.prospector == nil {
		httputil.NotConfigured(w, "apify")
		return
	}
	job, err := h.prospector.Get(r.Context(), h.ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, job)
}

// HandleListProspectJobs lists the caller's discovery runs, newest first.
//
//	GET /api/prospects?active=true
func (h *Handlers) HandleListProspectJobs(w http.ResponseWriter, r *http.Request) {
	if h.prospector == nil {
		httputil.NotConfigured(w, "apify")
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	jobs, err := h.prospector.List(r.Context(), h.ownerID(r), activeOnly)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []domain.ProspectJob{}
	}
	httputil.OK(w, map[string]interface{}{"jobs": jobs})
}
