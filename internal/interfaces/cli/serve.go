package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/landwho/landwho/internal/application/minting"
	"github.com/landwho/landwho/internal/application/parceling"
	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/domain/land"
	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/domain/notification"
	"github.com/landwho/landwho/internal/domain/parcel"
	"github.com/landwho/landwho/internal/infrastructure/database/postgres"
	"github.com/landwho/landwho/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/landwho/landwho/internal/infrastructure/database/redis"
	"github.com/landwho/landwho/internal/infrastructure/ledger"
	"github.com/landwho/landwho/internal/infrastructure/messaging/kafka"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/landwho/landwho/internal/infrastructure/monitoring/prometheus"
	miniostore "github.com/landwho/landwho/internal/infrastructure/storage/minio"
	httpserver "github.com/landwho/landwho/internal/interfaces/http"
	"github.com/landwho/landwho/internal/interfaces/http/handlers"
	"github.com/landwho/landwho/internal/interfaces/http/middleware"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the LandWho API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	logger = logger.Named("apiserver")
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := prommetrics.NewCollector()
	metrics := prommetrics.NewAppMetrics(collector)

	// Record store
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	ownerRepo := repositories.NewOwnerRepository(pool, logger)
	landRepo := repositories.NewLandRepository(pool, logger)
	mintRepo := repositories.NewMintedParcelRepository(pool, logger)
	notifRepo := repositories.NewNotificationRepository(pool, logger)

	// In-flight registry: redis when configured, in-process otherwise.
	var registry mint.InFlightRegistry = mint.NewMemoryRegistry()
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		registry = redisinfra.NewInFlightRegistry(redisClient, cfg.Redis.EntryTTL, logger)
	}

	// Lifecycle event publisher
	var events mint.EventPublisher
	if cfg.Kafka.Enabled {
		ensureTopics(ctx, cfg.Kafka, logger)
		publisher, err := kafka.NewPublisher(cfg.Kafka, "landwho-apiserver", logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		events = publisher
	}

	// Content store
	minioClient, err := miniostore.NewClient(cfg.Content, logger)
	if err != nil {
		return err
	}
	contentStore := miniostore.NewContentStore(minioClient, cfg.Content.Bucket, logger)

	// Ledger
	chain, err := ledger.New(cfg.Ledger, logger)
	if err != nil {
		return err
	}

	// Domain and application services
	landSvc := land.NewService(ownerRepo, landRepo, logger)
	notifSvc := notification.NewService(notifRepo, logger)
	parcelSvc := parceling.NewService(landSvc, mintRepo, parcel.PartitionOptions{
		CellSizeMeters:    cfg.Grid.CellSizeMeters,
		BBoxMarginDegrees: cfg.Grid.BBoxMarginDegrees,
		MaxCells:          cfg.Grid.MaxCells,
	}, metrics, logger)
	mintSvc := minting.NewService(registry, mintRepo, contentStore, chain,
		events, notifSvc, metrics, logger, minting.Options{
			MaxConcurrent:  cfg.Mint.MaxConcurrent,
			AttemptTimeout: cfg.Mint.AttemptTimeout,
			ConfirmTimeout: cfg.Ledger.ConfirmTimeout,
		})

	// HTTP
	health := handlers.NewHealthHandler(Version)
	health.AddProbe("postgres", func(ctx context.Context) error { return pool.Ping(ctx) })
	if redisClient != nil {
		health.AddProbe("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		OwnerHandler:        handlers.NewOwnerHandler(landSvc),
		LandHandler:         handlers.NewLandHandler(landSvc),
		GridHandler:         handlers.NewGridHandler(parcelSvc),
		MintHandler:         handlers.NewMintHandler(mintSvc, mintRepo),
		NotificationHandler: handlers.NewNotificationHandler(notifSvc),
		HealthHandler:       health,
		CORS:                middleware.DefaultCORSConfig(cfg.Server.CORSOrigins),
		Logging:             middleware.DefaultLoggingConfig(),
		Logger:              logger,
		Metrics:             metrics,
		MetricsHandler:      collector.Handler(),
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()
	logger.Info("api server started", logging.String("addr", cfg.Server.Addr()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", logging.Err(err))
	}
	if err := mintSvc.Shutdown(shutdownCtx); err != nil {
		logger.Warn("mint continuations did not drain before the deadline", logging.Err(err))
	}
	return nil
}

// ensureTopics creates the lifecycle topics if the broker does not have
// them.  Failure is not fatal: brokers with auto-create enabled still work.
func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	manager, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		logger.Warn("topic manager unavailable, relying on broker auto-create", logging.Err(err))
		return
	}
	defer manager.Close()

	ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := manager.EnsureMintTopics(ensureCtx); err != nil {
		logger.Warn("failed to ensure lifecycle topics", logging.Err(err))
	}
}
