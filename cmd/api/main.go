package main

// @title JLC Studio API
// @version 1.0
// @description Backend for the JLC Studio marketing site: referral program, bookings, and contact.

// @contact.name JLC Studio
// @contact.email jlcstudiollc@gmail.com

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v76"

	"github.com/jlcstudio/site-backend/config"
	"github.com/jlcstudio/site-backend/pkg/api/handlers"
	"github.com/jlcstudio/site-backend/pkg/billing"
	"github.com/jlcstudio/site-backend/pkg/cache"
	"github.com/jlcstudio/site-backend/pkg/contact"
	"github.com/jlcstudio/site-backend/pkg/email"
	"github.com/jlcstudio/site-backend/pkg/jobs"
	"github.com/jlcstudio/site-backend/pkg/logger"
	"github.com/jlcstudio/site-backend/pkg/metrics"
	custommiddleware "github.com/jlcstudio/site-backend/pkg/middleware"
	"github.com/jlcstudio/site-backend/pkg/referral"
	"github.com/jlcstudio/site-backend/pkg/sheetstore"
)

func main() {
	// Load configuration
	cfg := config.Load()
	appLogger := logger.New(cfg.LogLevel)
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
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

	// Stripe API key for checkout session creation
	stripe.Key = cfg.StripeSecretKey
	if cfg.StripeSecretKey == "" {
		log.Printf("⚠️  STRIPE_SECRET_KEY not set, checkout disabled")
	}

	// Open the referral workbook, creating it with headers if missing
	workbook, err := sheetstore.Open(cfg.WorkbookPath,
		sheetstore.Sheet{Name: referral.ReferrersSheet, Header: referral.ReferrersHeader},
		sheetstore.Sheet{Name: referral.ConversionsSheet, Header: referral.ConversionsHeader},
	)
	if err != nil {
		log.Fatalf("❌ Failed to open referral workbook: %v", err)
	}
	log.Printf("✅ Referral workbook ready at %s", cfg.WorkbookPath)

	// Redis is optional: without it, webhook dedup falls back to the
	// conversion ledger scan.
	var redisClient *cache.Client
	var deduper billing.EventDeduper
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, webhook dedup uses ledger only: %v", err)
		} else {
			defer redisClient.Close()
			deduper = billing.NewRedisDeduper(redisClient)
		}
	} else {
		log.Printf("ℹ️  Redis disabled (no REDIS_URL configured)")
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize services
	emailService := email.NewService(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.OperatorEmail,
		cfg.PayoutAmountCents,
		cfg.SendGridAPIKey,
	)

	directory := referral.NewDirectory(workbook)
	ledger := referral.NewLedger(workbook)
	codeGen := referral.NewCodeGenerator(cfg.ReferralCodePrefix)
	referralService := referral.NewService(directory, emailService, codeGen, cfg.BookingURL)
	checkoutService := billing.NewCheckoutService(cfg.SiteURL)
	webhookProcessor := billing.NewWebhookProcessor(directory, ledger, emailService, deduper, cfg.StripeWebhookSecret)
	contactService := contact.NewService(emailService)

	// Initialize handlers
	referralHandler := handlers.NewReferralHandler(referralService, prometheusMetrics)
	billingHandler := handlers.NewBillingHandler(checkoutService, webhookProcessor, prometheusMetrics)
	contactHandler := handlers.NewContactHandler(contactService, prometheusMetrics)
	authHandler := handlers.NewAuthHandler(cfg, prometheusMetrics)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)       // 5 req/min for login
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20) // 100 req/min for Stripe webhooks

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				appLogger.Error("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status, "error", v.Error)
			} else {
				appLogger.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	// Prometheus metrics middleware
	e.Use(prometheusMetrics.Middleware())

	// CORS with restricted origins
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"Stripe-Signature",
		},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())

	// Global rate limiting
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "JLC Studio API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		storeStatus := "healthy"
		if _, err := workbook.Rows(ctx, referral.ReferrersSheet); err != nil {
			storeStatus = "unhealthy"
		}

		status := http.StatusOK
		if storeStatus == "unhealthy" {
			status = http.StatusServiceUnavailable
		}

		return c.JSON(status, map[string]any{
			"status": storeStatus,
			"store":  storeStatus,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "pong",
		})
	})

	// Referral program
	v1.POST("/referrals/signup", referralHandler.Signup)

	// Checkout and payments
	v1.POST("/checkout", billingHandler.CreateCheckout)
	// Stripe webhook with higher rate limit: 100 per minute
	v1.POST("/webhook/stripe", billingHandler.HandleWebhook, webhookRateLimiter.RateLimitMiddleware())

	// Contact form
	v1.POST("/contact", contactHandler.Submit)

	// Admin auth
	v1.POST("/auth/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
	authGroup := v1.Group("/auth", custommiddleware.RequireAdmin(cfg.JWTSecret))
	authGroup.GET("/me", authHandler.Me)

	// Payout reminder cron
	cronManager := jobs.NewCronManager(ledger, emailService, cfg.PayoutReminderCron, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to set up cron jobs: %v", err)
	}
	cronManager.Start()

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 JLC Studio API starting on %s", address)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("🔒 Endpoint limits: login (5/min), webhook (100/min)")
	log.Printf("⏰ Payout reminder: %s", cfg.PayoutReminderCron)

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

	// Stop cron jobs
	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	// Gracefully shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
