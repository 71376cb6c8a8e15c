package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/localstore"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"
	"storefront/internal/view"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("remote_backend", cfg.Remote.Backend).Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Device-local cart store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	local := localstore.NewRedisStore(redisClient, cfg.Redis.Prefix, cfg.Redis.TTL, logger)

	// Per-user remote store, guarded by a circuit breaker
	remote, closeRemote, err := openRemoteStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRemote()

	remote = repository.NewBreakerStore(remote, repository.BreakerSettings{
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}, logger)

	// Product catalogue with S3 and local fallback
	products, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load product catalogue: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	sessions := session.NewManager()
	builder := view.NewBuilder(
		pricing.NewFormatter(cfg.Store.Glyph, cfg.Store.Locale),
		cfg.Store.ShippingFee,
		cfg.Store.Currency,
	)

	// Initialize services
	cartService := service.NewCartService(service.CartServiceDeps{
		Local:      local,
		Remote:     remote,
		Catalog:    products,
		Sessions:   sessions,
		Builder:    builder,
		Metrics:    m,
		DetailPage: cfg.Pages.Detail,
	}, logger)

	checkoutService := service.NewCheckoutService(service.CheckoutServiceDeps{
		Local:            local,
		Orders:           remote,
		Remote:           remote,
		Sessions:         sessions,
		Builder:          builder,
		Metrics:          m,
		ConfirmationPage: cfg.Pages.Confirmation,
		ClearRemoteCart:  cfg.Remote.ClearOnCheckout,
	}, logger)

	productService := service.NewProductService(products, local, logger)

	listener := auth.NewListener()
	unsubscribe, err := listener.OnAuthStateChanged(cartService.OnAuthStateChanged)
	if err != nil {
		return fmt.Errorf("failed to subscribe to auth state: %w", err)
	}
	defer unsubscribe()

	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	authService := service.NewAuthService(verifier, listener, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, cfg.Pages.Login, logger),
		Session:  handler.NewSessionHandler(authService, cartService, logger),
	}

	// Initialize router
	mux := router.New(handlers, m, prometheus.DefaultGatherer, cfg.Auth.APIKey, logger)

	if cfg.Session.IdleTimeout > 0 {
		go evictIdleSessions(ctx, sessions, cfg.Session.IdleTimeout, logger)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Int("products", products.Size()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// openRemoteStore connects the configured backend. The returned func releases it.
func openRemoteStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Store, func(), error) {
	switch cfg.Remote.Backend {
	case config.RemoteMongo:
		db, err := repository.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(disconnectCtx); err != nil {
				logger.Error().Err(err).Msg("failed to disconnect mongo")
			}
		}
		return repository.NewMongoStore(db, logger), closeFn, nil

	case config.RemoteFirestore:
		client, err := repository.NewFirestoreClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close firestore client")
			}
		}
		return repository.NewFirestoreStore(client, logger), closeFn, nil

	default:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Migrate(pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repository.NewPostgresStore(pool, logger), pool.Close, nil
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (catalog.Catalog, error) {
	fileLoader := catalog.NewFileLoader(logger)

	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		l, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for the product catalogue (S3 disabled)")
	}

	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)
	return loader.Load(ctx, cfg.Catalog.Path)
}

func evictIdleSessions(ctx context.Context, sessions *session.Manager, maxIdle time.Duration, logger zerolog.Logger) {
	interval := maxIdle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.EvictIdle(maxIdle); n > 0 {
				logger.Debug().Int("evicted", n).Int("sessions", sessions.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
