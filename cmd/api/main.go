package main

import (
	"context"
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

	"github.com/grsix/outreach/config"
	"github.com/grsix/outreach/pkg/ai"
	"github.com/grsix/outreach/pkg/ai/llm"
	"github.com/grsix/outreach/pkg/api"
	"github.com/grsix/outreach/pkg/api/handlers"
	"github.com/grsix/outreach/pkg/cache"
	"github.com/grsix/outreach/pkg/campaigns"
	"github.com/grsix/outreach/pkg/dialogue"
	"github.com/grsix/outreach/pkg/email"
	"github.com/grsix/outreach/pkg/knowledge"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/metrics"
	custommiddleware "github.com/grsix/outreach/pkg/middleware"
	"github.com/grsix/outreach/pkg/realtime"
	"github.com/grsix/outreach/pkg/scheduler"
	"github.com/grsix/outreach/pkg/store"
	"github.com/grsix/outreach/pkg/telephony"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
			BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
				return event
			},
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

	// Initialize database
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer st.Close()
	log.Printf("✅ Database opened at %s", cfg.DatabasePath)

	// Initialize Redis cache. The API runs without it, stats queries just
	// skip the cache.
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, stats caching disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Completion client and generators
	completer := llm.NewClient(llm.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: float32(cfg.LLMTemperature),
		Timeout:     cfg.LLMTimeout,
	}, log.Default())
	generator := ai.NewGenerator(completer)

	// Conversation engine for live calls
	sessions := dialogue.NewMemoryStore(cfg.SessionHistoryCap)
	engine := dialogue.NewEngine(sessions, completer, dialogue.NewLexiconClassifier(), appLogger, prometheusMetrics)

	// Outbound dialer
	dialer, err := telephony.NewTwilioDialer(telephony.Config{
		AccountSID:  cfg.TwilioAccountSID,
		AuthToken:   cfg.TwilioAuthToken,
		FromNumber:  cfg.TwilioPhoneNumber,
		WebhookBase: cfg.PublicBaseURL,
	}, log.Default())
	if err != nil {
		log.Fatalf("❌ Failed to configure Twilio dialer: %v", err)
	}

	// Services
	scraper := knowledge.NewScraper(log.Default())
	knowledgeSvc := knowledge.New(st, scraper, generator, appLogger)
	campaignSvc := campaigns.New(st, redisClient, appLogger)
	emailSvc := email.NewService(st, scraper, generator, cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey, log.Default())

	// Realtime hub pushes campaign stats to dashboard websockets
	hub := realtime.NewHub(appLogger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
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

	// CORS for the dashboard frontend
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{
			"http://localhost:5173", // Development
			"https://app.grsix.ai",  // Production
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())

	// Global rate limiting
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "GRSIX Outreach API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		if err := st.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		cacheState := "disabled"
		if redisClient != nil {
			cacheState = "up"
			if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
				cacheState = "down"
			}
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    cacheState,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Dashboard live updates
	e.GET("/ws", hub.ServeWS)

	// API routes
	handlers.NewScheduleHandler(st, generator, appLogger).Register(e.Group("/api/schedule"))
	handlers.NewAgentHandler(st, generator, dialer, appLogger).Register(e.Group("/api/agent"))
	handlers.NewCampaignHandler(campaignSvc, appLogger).Register(e.Group("/api/campaigns"))
	handlers.NewKnowledgeHandler(knowledgeSvc, appLogger).Register(e.Group("/api/knowledge-base"))
	handlers.NewEmailHandler(emailSvc, appLogger).Register(e.Group("/api"))
	handlers.NewChatbotHandler(completer, appLogger).Register(e.Group("/api/chatbot"))

	// Twilio voice webhooks
	telephony.NewWebhookHandler(st, engine, appLogger).Register(e.Group("/api/twilio"))

	// Campaign call sweep and session eviction
	callScheduler := scheduler.New(st, dialer, hub, prometheusMetrics, appLogger)
	cronManager := scheduler.NewCronManager(callScheduler, sessions, cfg.SessionIdleTTL, prometheusMetrics, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to set up cron jobs: %v", err)
	}
	cronManager.Start()
	defer cronManager.Stop()

	// Start server
	go func() {
		addr := cfg.APIHost + ":" + cfg.APIPort
		log.Printf("🚀 Server starting on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Forced shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
