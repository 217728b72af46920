package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/pkg/httputil"
	"github.com/lumina/partnerdesk/internal/service/payment"
)

// HandleListPayments returns commission records with filters and pagination.
//
//	GET /api/payments?influencer_id=&status=&batch_id=&page=&limit=
func (h *Handlers) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, 50, 200)
	q := r.URL.Query()

	items, total, err := h.payments.List(r.Context(), payment.ListFilter{
		InfluencerID: q.Get("influencer_id"),
		Status:       q.Get("status"),
		BatchID:      q.Get("batch_id"),
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Payment{}
	}
	httputil.OK(w, NewPaginatedResponse(items, params, total))
}

// HandleGetPayment returns a commission record by id.
//
//	GET /api/payments/{id}
func (h *Handlers) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, p)
}

// HandleListBatches returns payout batches, newest first.
//
//	GET /api/payment-batches
func (h *Handlers) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	items, err := h.payments.ListBatches(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.PaymentBatch{}
	}
	httputil.OK(w, map[string]interface{}{"batches": items})
}

// HandleCreateBatch sweeps all pending commissions into a new payout batch.
//
//	POST /api/payment-batches
func (h *Handlers) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.payments.CreateBatch(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, b)
}

// HandleGetBatch returns a payout batch with its payments.
//
//	GET /api/payment-batches/{id}
func (h *Handlers) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.payments.GetBatch(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	items, _, err := h.payments.List(r.Context(), payment.ListFilter{BatchID: id, Limit: 1000})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.Payment{}
	}
	httputil.OK(w, map[string]interface{}{"batch": b, "payments": items})
}

// HandleMarkBatchPaid settles a batch after the bank transfer went out.
//
//	POST /api/payment-batches/{id}/pay
func (h *Handlers) HandleMarkBatchPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.payments.MarkBatchPaid(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	b, err := h.payments.GetBatch(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, b)
}

// HandleExportBatch renders the payout CSV and uploads it to object storage.
//
//	POST /api/payment-batches/{id}/export
func (h *Handlers) HandleExportBatch(w http.ResponseWriter, r *http.Request) {
	key, err := h.payments.ExportBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"export_key": key})
}
