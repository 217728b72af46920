package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/lumina/partnerdesk/internal/api"
	"github.com/lumina/partnerdesk/internal/apify"
	"github.com/lumina/partnerdesk/internal/auth"
	"github.com/lumina/partnerdesk/internal/config"
	"github.com/lumina/partnerdesk/internal/export"
	"github.com/lumina/partnerdesk/internal/gemini"
	"github.com/lumina/partnerdesk/internal/gmailapi"
	"github.com/lumina/partnerdesk/internal/prospect"
	"github.com/lumina/partnerdesk/internal/repository/postgres"
	"github.com/lumina/partnerdesk/internal/service/campaign"
	"github.com/lumina/partnerdesk/internal/service/coupon"
	"github.com/lumina/partnerdesk/internal/service/inbox"
	"github.com/lumina/partnerdesk/internal/service/influencer"
	"github.com/lumina/partnerdesk/internal/service/partnership"
	"github.com/lumina/partnerdesk/internal/service/payment"
	"github.com/lumina/partnerdesk/internal/shopify"
	"github.com/lumina/partnerdesk/internal/templates"
	"github.com/lumina/partnerdesk/internal/worker"
)

// gmailMailer adapts the Gmail client to the inbox mailer contract.
type gmailMailer struct {
	client *gmailapi.Client
}

func (m *gmailMailer) ListInbound(ctx context.Context, max int) ([]inbox.InboundMessage, error) {
	msgs, err := m.client.ListInbound(ctx, max)
	if err != nil {
		return nil, err
	}
	out := make([]inbox.InboundMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, inbox.InboundMessage{
			GmailID:    msg.ID,
			ThreadID:   msg.ThreadID,
			From:       msg.From,
			FromName:   msg.FromName,
			To:         msg.To,
			Subject:    msg.Subject,
			Snippet:    msg.Snippet,
			ReceivedAt: msg.ReceivedAt,
		})
	}
	return out, nil
}

func (m *gmailMailer) Send(ctx context.Context, to, subject, body, threadID string) (string, string, error) {
	return m.client.Send(ctx, to, subject, body, threadID)
}

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pingCancel()
	log.Println("Connected to PostgreSQL")

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unreachable, continuing without it: %v", err)
			redisClient = nil
		} else {
			log.Println("Connected to Redis")
		}
	}

	// Repositories.
	influencerRepo := postgres.NewInfluencerRepo(db)
	workflowRepo := postgres.NewWorkflowRepo(db)
	couponRepo := postgres.NewCouponRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)
	emailRepo := postgres.NewEmailRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	dashboardRepo := postgres.NewDashboardRepo(db)

	// Optional integrations. Services treat a nil dependency as "not
	// configured" and answer 503 for the operations that need it.
	var storefront coupon.Storefront
	if cfg.Shopify.Configured() {
		storefront = shopify.NewClient(cfg.Shopify)
		log.Printf("Shopify storefront enabled (%s)", cfg.Shopify.ShopDomain)
	}

	var mailer inbox.Mailer
	var gmailClient *gmailapi.Client
	if cfg.Gmail.Configured() {
		gmailClient = gmailapi.NewClient(cfg.Gmail)
		mailer = &gmailMailer{client: gmailClient}
		log.Printf("Gmail integration enabled (%s)", cfg.Gmail.SenderAddress)
	}

	var exporter payment.Exporter
	if cfg.Export.Configured() {
		s3Exporter, err := export.NewS3Exporter(ctx, cfg.Export)
		if err != nil {
			log.Fatalf("Failed to init S3 exporter: %v", err)
		}
		exporter = s3Exporter
		log.Printf("Payout export enabled (s3://%s/%s)", cfg.Export.S3Bucket, cfg.Export.KeyPrefix)
	}

	var apifyClient *apify.Client
	if cfg.Apify.Configured() {
		apifyClient = apify.NewClient(cfg.Apify)
		log.Println("Apify scraping enabled")
	}

	var drafter prospect.Drafter
	if cfg.Gemini.Configured() {
		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini)
		if err != nil {
			log.Printf("Gemini unavailable, outreach drafting disabled: %v", err)
		} else {
			drafter = geminiClient
			log.Printf("Gemini drafting enabled (%s)", cfg.Gemini.Model)
		}
	}

	// Services.
	influencerSvc := influencer.NewService(influencerRepo)
	partnershipSvc := partnership.NewService(workflowRepo)
	couponSvc := coupon.NewService(couponRepo, storefront)
	paymentSvc := payment.NewService(paymentRepo, exporter)
	inboxSvc := inbox.NewService(emailRepo, mailer, influencerSvc, templates.NewEngine())
	campaignSvc := campaign.NewService(campaignRepo)

	var prospectSvc *prospect.Service
	if apifyClient != nil {
		var store prospect.Store
		if redisClient != nil {
			store = prospect.NewRedisStore(redisClient)
		} else {
			store = prospect.NewMemoryStore()
		}
		prospectSvc = prospect.NewService(store, apifyClient, drafter, influencerSvc, cfg.Prospect.Timeout())
	}

	// Cron jobs. A nil job makes its endpoint answer 503.
	var notifierJob api.CronJob
	var notifier *worker.NotificationDispatcher
	if gmailClient != nil {
		notifier = worker.NewNotificationDispatcher(notificationRepo, gmailClient)
		notifier.Tune(cfg.Notifier.BatchSize, cfg.Notifier.MaxAttempts)
		notifierJob = notifier
	}
	var importDrainer api.CronJob
	if apifyClient != nil {
		importDrainer = worker.NewImportDrainer(influencerSvc, worker.NewApifyProfileFetcher(apifyClient))
	}
	var mailSyncer api.CronJob
	if mailer != nil {
		mailSyncer = worker.NewMailSyncJob(inboxSvc)
	}

	// HTTP layer.
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	}
	authManager := auth.NewManager(&cfg.Auth, baseURL)

	handlers := api.NewHandlers(influencerSvc, partnershipSvc, couponSvc, paymentSvc, inboxSvc, campaignSvc, prospectSvc)
	handlers.SetDashboardSource(dashboardRepo)
	handlers.SetLocker(worker.NewCronLocker(redisClient, db))
	handlers.SetShopifyWebhookSecret(cfg.Shopify.WebhookSecret)
	handlers.SetCronJobs(importDrainer, mailSyncer, notifierJob)
	handlers.SetOwnerResolver(func(r *http.Request) string {
		if s := authManager.GetSession(r); s != nil {
			return s.Email
		}
		return ""
	})

	var allowedOrigins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		allowedOrigins = []string{v}
	}

	server := api.NewServer(handlers, api.NewHealthChecker(db, redisClient), authManager, cfg.Cron.Secret, allowedOrigins)

	// Without an external scheduler hitting /cron, drain the notification
	// outbox from an in-process loop instead.
	if cfg.Cron.Secret == "" && notifier != nil {
		go notifier.Start(ctx, cfg.Notifier.Interval())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		errCh <- server.ListenAndServe(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
