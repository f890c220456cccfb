// Package main is the entry point for the Storefront API server.
// Storefront serves a product catalog, user accounts and shopping carts over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/cache/memory"
	"github.com/prn-tf/storefront/internal/cache/redis"
	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/events"
	"github.com/prn-tf/storefront/internal/handler"
	"github.com/prn-tf/storefront/internal/metrics"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
	"github.com/prn-tf/storefront/internal/repository"
	"github.com/prn-tf/storefront/internal/repository/postgres"
	"github.com/prn-tf/storefront/internal/repository/sqlite"
	"github.com/prn-tf/storefront/internal/service"
	"github.com/prn-tf/storefront/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("STOREFRONT_CONFIG"), "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting Storefront server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}

	logger.Info().Msg("Storefront server stopped")
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Database
	opened, err := repository.NewFactory(cfg.Database, logger).
		Register(sqlite.Driver, sqlite.Open).
		Register(postgres.Driver, postgres.Open).
		Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := opened.Database.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}()
	repos := opened.Repos

	// Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Product cache
	if cfg.Cache.Enabled {
		var cache repository.Cache
		switch cfg.Cache.Backend {
		case config.CacheBackendRedis:
			client, err := redis.NewClient(ctx, cfg.Redis)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			defer func() { _ = client.Close() }()
			cache = redis.NewCache(client, "")
		default:
			memCache := memory.NewCache(cfg.Cache.CleanupInterval)
			defer memCache.Stop()
			cache = memCache
		}

		repos.Product = repository.NewCachedProductRepository(repos.Product, cache, cfg.Cache.ProductTTL, logger, m.CacheResult)
		logger.Info().Str("backend", cfg.Cache.Backend).Dur("ttl", cfg.Cache.ProductTTL).Msg("product cache enabled")
	}

	// Cart events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		publisher = events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue, cfg.Events.PublishTimeout, logger)
		logger.Info().Str("queue", cfg.Events.Queue).Msg("cart events enabled")
	}

	// Image uploads
	var images storage.ImageStore
	if cfg.Storage.Enabled {
		store, err := storage.NewS3ImageStore(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize image storage: %w", err)
		}
		images = store
		logger.Info().Str("bucket", cfg.Storage.Bucket).Msg("image uploads enabled")
	}

	// Authentication
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		Algorithm:  cfg.Auth.Algorithm,
		DefaultTTL: cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	hasher := crypto.NewPasswordHasher(cfg.Auth.BcryptCost)
	resolver := auth.NewResolver(tokens, repos.User, logger)

	// Services
	paginator := service.NewPaginator(cfg.Pagination)
	userService := service.NewUserService(repos.User, hasher, paginator, logger)
	authService := service.NewAuthService(repos.User, userService, hasher, tokens,
		service.AuthConfig{AccessTokenTTL: cfg.Auth.AccessTokenTTL}, m, logger)
	categoryService := service.NewCategoryService(repos.Category, paginator, logger)
	productService := service.NewProductService(repos.Product, repos.Category, paginator, logger)
	imageService := service.NewImageService(repos.Product, images,
		service.ImageConfig{DefaultExpiry: cfg.Storage.UploadURLTTL}, logger)
	cartService := service.NewCartService(repos.Cart, repos.Product, paginator, logger,
		service.WithPublisher(publisher),
		service.WithPublishTimeout(cfg.Events.PublishTimeout),
		service.WithMetrics(m),
	)

	// HTTP
	healthHandler := handler.NewHealthHandler(opened.Database, logger)
	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(authService, logger),
		AccountHandler:  handler.NewAccountHandler(userService, logger),
		UserHandler:     handler.NewUserHandler(userService, logger),
		CategoryHandler: handler.NewCategoryHandler(categoryService, logger),
		ProductHandler:  handler.NewProductHandler(productService, imageService, logger),
		CartHandler:     handler.NewCartHandler(cartService, logger),
		HealthHandler:   healthHandler,
		Resolver:        resolver,
		Metrics:         m,
		MetricsPath:     cfg.Metrics.Path,
		MaxBodySize:     cfg.Server.MaxBodySize,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")
	healthHandler.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
