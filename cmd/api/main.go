package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/leadtoorder/config"
	"github.com/jordanlanch/leadtoorder/pkg/api/handlers"
	custommw "github.com/jordanlanch/leadtoorder/pkg/api/middleware"
	"github.com/jordanlanch/leadtoorder/pkg/auth"
	"github.com/jordanlanch/leadtoorder/pkg/cache"
	"github.com/jordanlanch/leadtoorder/pkg/calendar"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/email"
	"github.com/jordanlanch/leadtoorder/pkg/enquiries"
	"github.com/jordanlanch/leadtoorder/pkg/export"
	"github.com/jordanlanch/leadtoorder/pkg/jobs"
	"github.com/jordanlanch/leadtoorder/pkg/leads"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/metrics"
	custommiddleware "github.com/jordanlanch/leadtoorder/pkg/middleware"
	"github.com/jordanlanch/leadtoorder/pkg/notify"
	"github.com/jordanlanch/leadtoorder/pkg/reports"
	"github.com/jordanlanch/leadtoorder/pkg/session"
	"github.com/jordanlanch/leadtoorder/pkg/sheets"
	"github.com/jordanlanch/leadtoorder/pkg/store"
	"github.com/jordanlanch/leadtoorder/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLog := logger.New(cfg.LogLevel)
	loc := cfg.Location()

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	if cfg.SheetsScriptURL == "" {
		log.Printf("⚠️  SHEETS_SCRIPT_URL is not set; every page will show local data only")
	}

	// Echo store: Redis, or an in-process map for local runs
	var kv domain.CacheRepository
	switch cfg.EchoStoreBackend {
	case config.StoreMemory:
		kv = cache.NewMemory()
		log.Printf("ℹ️  Echo store kept in memory; local data is lost on restart")
	default:
		redisClient, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		kv = redisClient
	}
	localStore := store.New(kv, appLog)

	if cfg.SeedDemoData {
		seeded, err := localStore.SeedIfEmpty(context.Background(), store.DemoSeed())
		if err != nil {
			log.Printf("⚠️  Failed to seed demo data: %v", err)
		} else if seeded {
			log.Printf("🌱 Demo data seeded")
		}
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	sheetClient := sheets.NewClient(sheets.Config{
		ScriptURL:      cfg.SheetsScriptURL,
		Timeout:        cfg.SheetsTimeout,
		LeadsSheet:     cfg.SheetLeads,
		FollowUpsSheet: cfg.SheetFollowUps,
		EnquiriesSheet: cfg.SheetEnquiries,
		LoginSheet:     cfg.SheetLogin,
	}, sheets.WithObserver(prometheusMetrics.ObserveSheet))

	// Initialize Slack notifications (if webhook URL configured)
	var slackNotifier *notify.Service
	if cfg.SlackWebhookURL != "" {
		slackNotifier = notify.NewService(notify.NewWebhookClient(cfg.SlackWebhookURL))
		log.Printf("✅ Slack notifications enabled")
	} else {
		slackNotifier = notify.NewService(nil)
		log.Printf("ℹ️  Slack notifications disabled (no webhook URL configured)")
	}
	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.TeamEmail, cfg.SendGridAPIKey)
	notifier := notify.NewFanout(slackNotifier, emailService)

	// Exports are kept locally and, with a bucket, on S3
	if err := os.MkdirAll(cfg.ExportLocalPath, 0o755); err != nil {
		log.Printf("⚠️  Export directory unavailable, exports are not kept: %v", err)
		cfg.ExportLocalPath = ""
	}
	var uploader export.Uploader
	if cfg.ExportS3Bucket != "" {
		s3Uploader, err := export.NewS3Uploader(context.Background(), export.S3Config{
			Bucket:          cfg.ExportS3Bucket,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.AWSEndpoint,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize S3 uploads: %v", err)
		} else {
			uploader = s3Uploader
			log.Printf("✅ Export uploads enabled (S3: %s)", cfg.ExportS3Bucket)
		}
	}

	// Initialize services
	tokenBlacklist := auth.NewTokenBlacklist(kv)
	sessionService := session.NewService(sheetClient, localStore, tokenBlacklist, session.Config{
		JWTSecret:       cfg.JWTSecret,
		ExpirationHours: cfg.JWTExpirationHours,
		EmailDomain:     cfg.UserEmailDomain,
	}, appLog)
	leadService := leads.NewService(sheetClient, localStore, notifier, prometheusMetrics,
		leads.Config{LeadsSheet: cfg.SheetLeads, Location: loc}, appLog)
	enquiryService := enquiries.NewService(sheetClient, localStore, notifier, prometheusMetrics,
		enquiries.Config{EnquiriesSheet: cfg.SheetEnquiries, Location: loc}, appLog)
	reportService := reports.NewService(leadService, enquiryService, loc, appLog)
	calendarService := calendar.NewService(leadService, loc, appLog)
	exportService := export.NewService(leadService, uploader, cfg.ExportLocalPath, prometheusMetrics, loc, appLog)

	// Background refresh of the working set
	var refresher handlers.Refresher
	var cronManager *jobs.CronManager
	if cfg.RefreshCron != "off" {
		monitor := jobs.NewWorkingSetMonitor(leadService, prometheusMetrics, loc, appLog)
		cronManager = jobs.NewCronManager(monitor, cfg.RefreshCron, log.Default())
		if err := cronManager.SetupJobs(); err != nil {
			log.Fatalf("❌ Failed to setup cron jobs: %v", err)
		}
		cronManager.Start()
		refresher = cronManager
		log.Printf("✅ Cron jobs started successfully")
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New(cfg.PhoneDefaultRegion)

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	defer globalRateLimiter.Stop()
	loginRateLimiter := custommiddleware.NewRateLimiter(cfg.LoginRateLimitPerMinute, 2)
	defer loginRateLimiter.Stop()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				appLog.Error("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			appLog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // Recover above turns the panic into a 500
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins...)))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(middleware.Gzip())
	e.Use(globalRateLimiter.Middleware())

	router := &handlers.Router{
		Health:       handlers.NewHealthHandler(localStore, refresher, cfg.APIEnvironment),
		Auth:         handlers.NewAuthHandler(sessionService, prometheusMetrics),
		Leads:        handlers.NewLeadHandler(leadService, leads.NewGuards()),
		Enquiry:      handlers.NewEnquiryHandler(enquiryService),
		Reports:      handlers.NewReportsHandler(reportService, calendarService),
		Export:       handlers.NewExportHandler(exportService),
		Settings:     handlers.NewSettingsHandler(localStore, appLog),
		Gate:         custommw.SessionGate(sessionService),
		DownloadGate: custommw.SessionGateFromQueryOrHeader(sessionService),
		LoginLimit:   loginRateLimiter.Middleware(),
	}
	router.Register(e)

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Lead to Order API starting on %s", address)
	log.Printf("📝 Log level: %s, timezone: %s", cfg.LogLevel, loc)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("📄 Sheets: leads=%s follow-ups=%s enquiries=%s login=%s", cfg.SheetLeads, cfg.SheetFollowUps, cfg.SheetEnquiries, cfg.SheetLogin)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), login %d/min", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst, cfg.LoginRateLimitPerMinute)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if cronManager != nil {
		cronManager.Stop()
		log.Println("✅ Cron jobs stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
