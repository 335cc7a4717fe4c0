// Package main is the entrypoint for the Stockroom API server.
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

	"github.com/stockroom/stockroom/internal/auth"
	"github.com/stockroom/stockroom/internal/cache"
	"github.com/stockroom/stockroom/internal/config"
	"github.com/stockroom/stockroom/internal/handler"
	"github.com/stockroom/stockroom/internal/middleware"
	"github.com/stockroom/stockroom/internal/repository"
	"github.com/stockroom/stockroom/internal/server"
	"github.com/stockroom/stockroom/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

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
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize services
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	policy := service.PolicyFromConfig(cfg.OwnershipEnforced)
	userService := service.NewUserService(repo, repo, tokens, cacheClient)
	productService := service.NewProductService(repo, policy, cacheClient)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(userService, logger)
	profileHandler := handler.NewProfileHandler(userService, logger)
	productHandler := handler.NewProductHandler(productService, logger)

	// Setup router
	r := setupRouter(h, healthHandler, authHandler, profileHandler, productHandler, tokens, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Registered first, closed last: in-flight handlers may still touch the
	// database while the cache drains.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"addr", srv.Addr(),
		"env", cfg.AppEnv,
		"ownership_enforced", cfg.OwnershipEnforced,
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

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	productHandler *handler.ProductHandler,
	tokens *auth.TokenService,
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
	r.Use(chimiddleware.RequestSize(cfg.MaxRequestBodySize))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:      logger,
		Cache:       cacheClient,
		AuthEnabled: cfg.RateLimitAuthEnabled,
		AuthRPS:     cfg.RateLimitAuthRPS,
		AuthBurst:   cfg.RateLimitAuthBurst,
	}

	// Public auth endpoints with per-IP rate limiting
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitAuth(rateLimitCfg))

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	// Everything else requires a valid session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Get("/profile", profileHandler.Profile)
		r.Put("/profile/username", profileHandler.UpdateUsername)

		r.Post("/add-product", productHandler.Create)
		r.Get("/", productHandler.List)
		r.Get("/product/{id}", productHandler.Get)
		r.Put("/product/{id}", productHandler.Update)
		r.Delete("/product/{id}", productHandler.Delete)
		r.Get("/search/{key}", productHandler.Search)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
