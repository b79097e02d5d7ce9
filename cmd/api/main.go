// Package main is the entrypoint for the Life Vault API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lifevault/lifevault/internal/activity"
	"github.com/lifevault/lifevault/internal/cache"
	"github.com/lifevault/lifevault/internal/config"
	"github.com/lifevault/lifevault/internal/email"
	"github.com/lifevault/lifevault/internal/handler"
	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/middleware"
	"github.com/lifevault/lifevault/internal/repository"
	"github.com/lifevault/lifevault/internal/server"
	"github.com/lifevault/lifevault/internal/vault"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Run database migrations
	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Vault crypto
	cipher, err := vault.NewCipher(cfg.VaultEncryptionKey)
	if err != nil {
		logger.Error("invalid vault encryption key", "error", err)
		os.Exit(1)
	}
	signer := vault.NewSigner(cfg.VaultSigningSecret)

	metricsRecorder := metrics.NewInMemory()

	// Outbound mail: log-only unless SMTP is configured
	var mailSender email.Sender
	if cfg.SMTPHost != "" {
		mailSender = email.NewSMTPSender(email.SMTPConfig{
			Host:            cfg.SMTPHost,
			Port:            cfg.SMTPPort,
			Username:        cfg.SMTPUsername,
			Password:        cfg.SMTPPassword,
			From:            cfg.SMTPFrom,
			BaseURL:         cfg.BaseURL,
			GracePeriodDays: cfg.GracePeriodDays,
		})
		logger.Info("using SMTP mail sender", "host", cfg.SMTPHost)
	} else {
		mailSender = email.NewLogSender(cfg.BaseURL, cfg.GracePeriodDays, logger)
		logger.Warn("SMTP not configured, mail will be logged instead of delivered")
	}

	// Activity audit pipeline: handlers publish to a Redis stream, the
	// worker drains it into Postgres.
	publisher := activity.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	worker := activity.NewWorker(cacheClient.Client(), repo, activity.NewConsumerID(), logger, metricsRecorder)

	// Inactivity evaluation core
	clock := inactivity.SystemClock{}
	verifier := inactivity.NewVerifier(repo, publisher, clock, logger, metricsRecorder)
	dispatcher := inactivity.NewDispatcher(repo, mailSender, publisher, verifier, clock, logger, metricsRecorder)
	discloser := inactivity.NewDiscloser(repo, repo, mailSender, publisher, signer, clock, logger, metricsRecorder)
	evaluator := inactivity.NewEvaluator(repo, dispatcher, discloser, cfg.GracePeriodDays, cache.NewRunLock(cacheClient), clock, logger, metricsRecorder)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(repo, publisher, clock, []byte(cfg.JWTSecret), cfg.JWTTTL, logger)
	assetHandler := handler.NewAssetHandler(repo, cipher, publisher, clock, logger)
	contactHandler := handler.NewContactHandler(repo, mailSender, publisher, clock, logger)
	activityHandler := handler.NewActivityLogHandler(repo, logger)
	settingsHandler := handler.NewSettingsHandler(repo, publisher, clock, logger)
	reactivationHandler := handler.NewReactivationHandler(verifier, logger)
	vaultAccessHandler := handler.NewVaultAccessHandler(repo, signer, cipher, logger)
	adminHandler := handler.NewAdminHandler(evaluator, metricsRecorder, logger)

	// Setup router
	r := setupRouter(routerDeps{
		health:      healthHandler,
		auth:        authHandler,
		assets:      assetHandler,
		contacts:    contactHandler,
		activityLog: activityHandler,
		settings:    settingsHandler,
		reactivate:  reactivationHandler,
		vaultAccess: vaultAccessHandler,
		admin:       adminHandler,
		cache:       cacheClient,
		cfg:         cfg,
		logger:      logger,
	})

	// Create server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Background loops
	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("activity worker stopped", "error", err)
		}
	}()
	srv.OnShutdown("activity worker", func(ctx context.Context) error {
		cancelWorker()
		select {
		case <-workerDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if cfg.EvaluationEnabled {
		scheduler := inactivity.NewScheduler(evaluator, cfg.EvaluationInterval, logger)
		schedCtx, cancelSched := context.WithCancel(ctx)
		schedDone := make(chan struct{})
		go func() {
			defer close(schedDone)
			if err := scheduler.Run(schedCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inactivity scheduler stopped", "error", err)
			}
		}()
		srv.OnShutdown("inactivity scheduler", func(ctx context.Context) error {
			cancelSched()
			select {
			case <-schedDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	} else {
		logger.Warn("inactivity evaluation disabled, relying on manual triggers")
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"grace_period_days", cfg.GracePeriodDays,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health      *handler.HealthHandler
	auth        *handler.AuthHandler
	assets      *handler.AssetHandler
	contacts    *handler.ContactHandler
	activityLog *handler.ActivityLogHandler
	settings    *handler.SettingsHandler
	reactivate  *handler.ReactivationHandler
	vaultAccess *handler.VaultAccessHandler
	admin       *handler.AdminHandler
	cache       *cache.Cache
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(d.cfg.IsDevelopment()))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))
	if origins := d.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: origins,
			MaxAge:         300,
		}))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    d.logger,
		Cache:     d.cache,
		Enabled:   d.cfg.RateLimitEnabled,
		PerMinute: d.cfg.RateLimitPerMinute,
		Burst:     d.cfg.RateLimitBurst,
	}

	// Public token-bearing endpoints, rate limited per IP
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitCfg))
		r.Get("/api/activity/verify/{token}", d.reactivate.Verify)
		r.Get("/verify-contact/{token}", d.contacts.Verify)
		r.Get("/vault-access/{ref}", d.vaultAccess.Access)
	})

	// Public auth endpoints
	r.With(middleware.RateLimitByIP(rateLimitCfg)).Post("/api/auth/signup", d.auth.Signup)
	r.With(middleware.RateLimitByIP(rateLimitCfg)).Post("/api/auth/login", d.auth.Login)

	// Authenticated API
	sessionAuth := middleware.SessionAuth([]byte(d.cfg.JWTSecret), d.logger)
	r.Route("/api", func(r chi.Router) {
		r.Use(sessionAuth)

		r.Get("/auth/me", d.auth.Me)
		r.Post("/auth/password", d.auth.ChangePassword)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", d.assets.List)
			r.Post("/", d.assets.Create)
			r.Get("/{id}", d.assets.Get)
			r.Patch("/{id}", d.assets.Update)
			r.Delete("/{id}", d.assets.Delete)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", d.contacts.List)
			r.Post("/", d.contacts.Create)
			r.Delete("/{id}", d.contacts.Delete)
		})

		r.Get("/activity", d.activityLog.List)

		r.Route("/settings", func(r chi.Router) {
			r.Put("/profile", d.settings.UpdateProfile)
			r.Put("/inactivity-period", d.settings.UpdateInactivityPeriod)
		})
	})

	// Operational endpoints guarded by the admin secret
	r.Route("/internal", func(r chi.Router) {
		r.Use(middleware.AdminAuth(d.cfg.AdminSecret, d.logger))
		r.Post("/evaluate", d.admin.TriggerEvaluation)
		r.Get("/metrics", d.admin.Metrics)
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
