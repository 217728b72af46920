package api

import (
	"net/http"

	"github.com/lumina/partnerdesk/internal/pkg/httputil"
)

// HandleDashboard returns the aggregate overview in one call.
//
//	GET /api/dashboard
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if h.dashboard == nil {
		httputil.NotConfigured(w, "dashboard")
		return
	}
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats)
}
