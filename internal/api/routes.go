package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lumina/partnerdesk/internal/auth"
)

// SetupRoutes configures the full route tree. The operator API sits behind
// session auth; the portal, webhooks and cron groups each carry their own
// credential scheme.
func SetupRoutes(h *Handlers, hc *HealthChecker, authManager *auth.Manager, cronSecret string, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", hc.HandleHealth)

	if authManager != nil {
		r.Get("/auth/login", authManager.HandleLogin)
		r.Get("/auth/callback", authManager.HandleCallback)
		r.Get("/auth/logout", authManager.HandleLogout)
		r.Get("/auth/user", authManager.HandleUserInfo)
	}

	// Influencer self-service, authenticated by the token in the path.
	r.Route("/portal/{token}", func(r chi.Router) {
		r.Get("/", h.HandlePortalGet)
		r.Patch("/", h.HandlePortalUpdate)
	})

	// Inbound integrations, authenticated per provider.
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/shopify/orders", h.HandleShopifyOrderWebhook)
		r.Post("/gmail", h.HandleGmailPushWebhook)
	})

	// Scheduler entry points, authenticated by shared secret.
	r.Route("/cron", func(r chi.Router) {
		r.Use(auth.RequireCronSecret(cronSecret))
		r.Post("/drain-imports", h.HandleCronDrainImports)
		r.Post("/sync-mail", h.HandleCronSyncMail)
		r.Post("/dispatch-notifications", h.HandleCronDispatchNotifications)
	})

	r.Route("/api", func(r chi.Router) {
		if authManager != nil {
			r.Use(authManager.RequireAuth)
		}

		r.Get("/dashboard", h.HandleDashboard)

		r.Route("/influencers", func(r chi.Router) {
			r.Get("/", h.HandleListInfluencers)
			r.Post("/", h.HandleCreateInfluencer)
			r.Get("/{id}", h.HandleGetInfluencer)
			r.Patch("/{id}", h.HandleUpdateInfluencer)
			r.Put("/{id}/status", h.HandleSetInfluencerStatus)
			r.Get("/{id}/partnerships", h.HandleListPartnerships)
			r.Post("/{id}/partnerships", h.HandleCreatePartnership)
		})

		r.Route("/partnerships", func(r chi.Router) {
			r.Get("/{id}", h.HandleGetPartnership)
			r.Post("/{id}/accept", h.HandleAcceptPartnership)
			r.Post("/{id}/renegotiate", h.HandleRenegotiatePartnership)
			r.Post("/{id}/cancel", h.HandleCancelPartnership)
			r.Post("/{id}/steps/{step}/complete", h.HandleCompleteStep)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", h.HandleListCoupons)
			r.Post("/", h.HandleCreateCoupon)
			r.Get("/{id}", h.HandleGetCoupon)
			r.Delete("/code/{code}", h.HandleDeleteCoupon)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.HandleListPayments)
			r.Get("/{id}", h.HandleGetPayment)
		})

		r.Route("/payment-batches", func(r chi.Router) {
			r.Get("/", h.HandleListBatches)
			r.Post("/", h.HandleCreateBatch)
			r.Get("/{id}", h.HandleGetBatch)
			r.Post("/{id}/pay", h.HandleMarkBatchPaid)
			r.Post("/{id}/export", h.HandleExportBatch)
		})

		r.Route("/emails", func(r chi.Router) {
			r.Get("/", h.HandleListEmails)
			r.Post("/sync", h.HandleSyncEmails)
			r.Post("/send", h.HandleSendOutreach)
			r.Get("/{id}", h.HandleGetEmail)
		})

		r.Route("/email-templates", func(r chi.Router) {
			r.Get("/", h.HandleListTemplates)
			r.Post("/", h.HandleCreateTemplate)
			r.Put("/{id}", h.HandleUpdateTemplate)
			r.Delete("/{id}", h.HandleDeleteTemplate)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.HandleListCampaigns)
			r.Post("/", h.HandleCreateCampaign)
			r.Get("/{id}", h.HandleGetCampaign)
			r.Put("/{id}", h.HandleUpdateCampaign)
			r.Put("/{id}/status", h.HandleSetCampaignStatus)
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", h.HandleListVideos)
			r.Post("/", h.HandleTrackVideo)
			r.Put("/{id}/metrics", h.HandleRecordVideoMetrics)
			r.Delete("/{id}", h.HandleUntrackVideo)
		})

		r.Route("/prospects", func(r chi.Router) {
			r.Get("/", h.HandleListProspectJobs)
			r.Post("/", h.HandleStartProspecting)
			r.Get("/{id}", h.HandleGetProspectJob)
		})
	})

	return r
}
