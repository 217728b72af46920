package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/service/inbox"
)

// HandleListEmails returns synced emails with filters and pagination.
//
//	GET /api/emails?influencer_id=&direction=&page=&limit=
func (h *Handlers) HandleListEmails(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, 50, 200)
	q := r.URL.Query()

	items, total, err := h.inbox.List(r.Context(), inbox.ListFilter{
		InfluencerID: q.Get("influencer_id"),
		Direction:    q.Get("direction"),
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Email{}
	}
	httputil.OK(w, NewPaginatedResponse(items, params, total))
}

// HandleGetEmail returns a synced email by id.
//
//	GET /api/emails/{id}
func (h *Handlers) HandleGetEmail(w http.ResponseWriter, r *http.Request) {
	e, err := h.inbox.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, e)
}

// HandleSyncEmails pulls recent inbound mail on demand.
//
//	POST /api/emails/sync
func (h *Handlers) HandleSyncEmails(w http.ResponseWriter, r *http.Request) {
	n, err := h.inbox.Sync(r.Context(), 100)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]int{"new_messages": n})
}

// HandleSendOutreach renders a template and sends it to an influencer.
//
//	POST /api/emails/send
func (h *Handlers) HandleSendOutreach(w http.ResponseWriter, r *http.Request) {
	var input struct {
		To           string                 `json:"to"`
		InfluencerID string                 `json:"influencer_id"`
		TemplateID   string                 `json:"template_id"`
		Vars         map[string]interface{} `json:"vars"`
		ThreadID     string                 `json:"thread_id"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	e, err := h.inbox.SendOutreach(r.Context(), inbox.SendOutreachInput{
		To:           input.To,
		InfluencerID: input.InfluencerID,
		TemplateID:   input.TemplateID,
		Vars:         input.Vars,
		ThreadID:     input.ThreadID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, e)
}

// HandleListTemplates returns all outreach templates.
//
//	GET /api/email-templates
func (h *Handlers) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := h.inbox.ListTemplates(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.EmailTemplate{}
	}
	httputil.OK(w, map[string]interface{}{"templates": items})
}

// HandleCreateTemplate registers a new Liquid outreach template.
//
//	POST /api/email-templates
func (h *Handlers) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	t, err := h.inbox.CreateTemplate(r.Context(), input.Name, input.Subject, input.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, t)
}

// HandleUpdateTemplate replaces a template's content.
//
//	PUT /api/email-templates/{id}
func (h *Handlers) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if !httputil.Decode(w, r, &input) {
		return
	}
	t, err := h.inbox.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), input.Name, input.Subject, input.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

// HandleDeleteTemplate removes a template.
//
//	DELETE /api/email-templates/{id}
func (h *Handlers) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}
