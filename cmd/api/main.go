// Package main is the entrypoint for the userdeck API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/cache"
	"github.com/userdeck/userdeck/internal/config"
	"github.com/userdeck/userdeck/internal/handler"
	"github.com/userdeck/userdeck/internal/media"
	"github.com/userdeck/userdeck/internal/middleware"
	"github.com/userdeck/userdeck/internal/repository"
	"github.com/userdeck/userdeck/internal/server"
	"github.com/userdeck/userdeck/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

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

	// The media store is optional; without one, uploads are rejected but
	// the rest of the API works.
	var store media.Store
	var janitor *media.Janitor
	if cfg.MediaEnabled() {
		s3Store, err := media.NewS3Store(ctx, media.S3Config{
			Endpoint:      cfg.MediaEndpoint,
			Region:        cfg.MediaRegion,
			Bucket:        cfg.MediaBucket,
			AccessKey:     cfg.MediaAccessKey,
			SecretKey:     cfg.MediaSecretKey,
			PublicBaseURL: cfg.MediaPublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to init media store", "error", err)
			os.Exit(1)
		}
		store = s3Store
		janitor = media.NewJanitor(s3Store, logger)
		logger.Info("media store configured", "bucket", cfg.MediaBucket)
	} else {
		logger.Warn("no media store configured, uploads disabled")
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// A nil *media.Janitor inside a non-nil interface would defeat the
	// service's nil check.
	var discarder service.Discarder
	if janitor != nil {
		discarder = janitor
	}

	accountService := service.NewAccountService(repo, store, tokens, logger)
	directoryService := service.NewDirectoryService(repo, store, discarder, logger)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(accountService, logger, cfg.MaxUploadSize)
	userHandler := handler.NewUserHandler(directoryService, logger, cfg.MaxUploadSize)

	r := setupRouter(healthHandler, authHandler, userHandler, tokens, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if janitor != nil {
		janitorCtx, cancelJanitor := context.WithCancel(ctx)
		go func() {
			if err := janitor.Run(janitorCtx); err != nil {
				logger.Error("media janitor error", "error", err)
			}
		}()
		srv.OnShutdown("media janitor", func(ctx context.Context) error {
			defer cancelJanitor()
			return janitor.Shutdown(ctx)
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	tokens *auth.TokenIssuer,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:      logger,
		Cache:       cacheClient,
		APIEnabled:  cfg.RateLimitAPIEnabled,
		APIRPM:      cfg.RateLimitAPIRPM,
		APIBurst:    cfg.RateLimitAPIBurst,
		AuthEnabled: cfg.RateLimitAuthEnabled,
		AuthRPM:     cfg.RateLimitAuthRPM,
		AuthBurst:   cfg.RateLimitAuthBurst,
	}

	r.Route("/api", func(r chi.Router) {
		// Signup and login are public but IP rate limited. Multipart
		// signup bodies are capped by the upload limit instead of the
		// JSON body limit.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitAuth(rateLimitCfg))
			r.With(middleware.MaxBodySize(cfg.MaxUploadSize)).Post("/signup", authHandler.Signup)
			r.With(middleware.MaxBodySize(cfg.MaxRequestBodySize)).Post("/login", authHandler.Login)
		})

		// Directory routes require a bearer token.
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Auth(tokens, logger))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))
			r.Use(middleware.MaxBodySize(cfg.MaxUploadSize))

			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Patch("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
			r.Get("/{id}/download", userHandler.Download)
		})
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
