package api

import (
	"net/http"

	"github.com/lumina/partnerdesk/internal/pkg/httputil"
)

// runCronJob executes a scheduled job under the distributed lock. A second
// instance hitting the endpoint while the lock is held gets a 200 with
// skipped=true so the scheduler never retries a healthy overlap.
func (h *Handlers) runCronJob(w http.ResponseWriter, r *http.Request, name string, job CronJob) {
	if job == nil {
		httputil.NotConfigured(w, name)
		return
	}

	if h.locker != nil {
		release, ok, err := h.locker.TryLock(r.Context(), name)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		if !ok {
			httputil.OK(w, map[string]interface{}{"job": name, "skipped": true})
			return
		}
		defer release()
	}

	n, err := job.RunOnce(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"job": name, "processed": n})
}

// HandleCronDrainImports processes queued import_pending influencers.
//
//	POST /cron/drain-imports
func (h *Handlers) HandleCronDrainImports(w http.ResponseWriter, r *http.Request) {
	h.runCronJob(w, r, "drain-imports", h.importDrainer)
}

// HandleCronSyncMail pulls recent inbound mail.
//
//	POST /cron/sync-mail
func (h *Handlers) HandleCronSyncMail(w http.ResponseWriter, r *http.Request) {
	h.runCronJob(w, r, "sync-mail", h.mailSyncer)
}

// HandleCronDispatchNotifications drains the workflow notification outbox.
//
//	POST /cron/dispatch-notifications
func (h *Handlers) HandleCronDispatchNotifications(w http.ResponseWriter, r *http.Request) {
	h.runCronJob(w, r, "dispatch-notifications", h.notifier)
}
