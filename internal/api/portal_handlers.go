package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/pkg/httputil"
)

// HandlePortalGet serves the influencer self-service view. The token in the
// path is the only credential; an unknown token reads as a missing page.
//
//	GET /portal/{token}
func (h *Handlers) HandlePortalGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.partnerships.PortalGet(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, view)
}

// HandlePortalUpdate applies an influencer's self-service edit. Only fields
// writable at the workflow's current step are accepted.
//
//	PATCH /portal/{token}
func (h *Handlers) HandlePortalUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !httputil.Decode(w, r, &fields) {
		return
	}
	token := chi.URLParam(r, "token")
	if err := h.partnerships.PortalUpdate(r.Context(), token, fields); err != nil {
		respondServiceError(w, err)
		return
	}
	view, err := h.partnerships.PortalGet(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, view)
}

// parseIntParam reads an integer chi URL parameter, answering 400 on junk.
func parseIntParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, name+" must be an integer")
		return 0, false
	}
	return v, true
}
