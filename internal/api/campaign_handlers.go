package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/service/campaign"
)

// HandleListCampaigns returns all campaigns with rollup stats.
//
//	GET /api/campaigns
func (h *Handlers) HandleListCampaigns(w http.ResponseWriter, r *http.Request) {
	items, err := h.campaigns.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Campaign{}
	}
	httputil.OK(w, map[string]interface{}{"campaigns": items})
}

// HandleCreateCampaign registers a new campaign in draft.
//
//	POST /api/campaigns
func (h *Handlers) HandleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

// HandleGetCampaign returns a campaign with rollup stats.
//
//	GET /api/campaigns/{id}
func (h *Handlers) HandleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

// HandleUpdateCampaign replaces a campaign's editable fields.
//
//	PUT /api/campaigns/{id}
func (h *Handlers) HandleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.campaigns.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

// HandleSetCampaignStatus moves a campaign between draft, running,
// finished and cancelled. Finished campaigns are frozen.
//
//	PUT /api/campaigns/{id}/status
func (h *Handlers) HandleSetCampaignStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	if err := h.campaigns.SetStatus(r.Context(), chi.URLParam(r, "id"), domain.CampaignStatus(input.Status)); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": input.Status})
}

// HandleListVideos returns tracked videos filtered by campaign or influencer.
//
//	GET /api/videos?campaign_id=&influencer_id=
func (h *Handlers) HandleListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.campaigns.ListVideos(r.Context(), q.Get("campaign_id"), q.Get("influencer_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Video{}
	}
	httputil.OK(w, map[string]interface{}{"videos": items})
}

// HandleTrackVideo registers a published promotional post for tracking.
//
//	POST /api/videos
func (h *Handlers) HandleTrackVideo(w http.ResponseWriter, r *http.Request) {
	var input campaign.TrackVideoInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	v, err := h.campaigns.TrackVideo(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, v)
}

// HandleRecordVideoMetrics stores a fresh metrics snapshot for a video.
//
//	PUT /api/videos/{id}/metrics
func (h *Handlers) HandleRecordVideoMetrics(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Views    int64 `json:"views"`
		Likes    int64 `json:"likes"`
		Comments int64 `json:"comments"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	if err := h.campaigns.RecordVideoMetrics(r.Context(), chi.URLParam(r, "id"), input.Views, input.Likes, input.Comments); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]bool{"updated": true})
}

// HandleUntrackVideo stops tracking a video.
//
//	DELETE /api/videos/{id}
func (h *Handlers) HandleUntrackVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.UntrackVideo(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}
