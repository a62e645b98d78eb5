package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/landwho/landwho/internal/application/reconciling"
	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/infrastructure/database/postgres"
	"github.com/landwho/landwho/internal/infrastructure/database/postgres/repositories"
	"github.com/landwho/landwho/internal/infrastructure/messaging/kafka"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/landwho/landwho/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/landwho/landwho/internal/interfaces/http"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

func newWorkerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the mint lifecycle worker",
		Long:  "Consumes mint lifecycle events from Kafka and surfaces parcels\nthat minted on chain but are missing their record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runWorker(cmd.Context(), cfg, logger)
		},
	}
}

func runWorker(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	logger = logger.Named("worker")
	if !cfg.Kafka.Enabled {
		return apperrors.New(apperrors.ErrCodeValidation, "the worker requires kafka.enabled=true")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := prommetrics.NewCollector()
	metrics := prommetrics.NewAppMetrics(collector)

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	mintRepo := repositories.NewMintedParcelRepository(pool, logger)
	svc := reconciling.NewService(mintRepo, metrics, logger)

	topics := []string{
		kafka.TopicMintSucceeded,
		kafka.TopicMintFailed,
		kafka.TopicMintReconcile,
	}
	consumer, err := kafka.NewConsumer(cfg.Kafka, topics, kafka.RetryPolicy{
		Backoff: cfg.Worker.PollInterval,
	}, logger)
	if err != nil {
		return err
	}
	for _, topic := range topics {
		consumer.Handle(topic, svc.HandleEvent)
	}
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	logger.Info("worker started", logging.Any("topics", topics))

	// Ops endpoints so probes and scrapes work in the worker deployment too.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", collector.Handler())
	ops := httpserver.NewServer(cfg.Server, mux, logger)
	go func() {
		if err := ops.Start(); err != nil {
			logger.Error("ops listener failed", logging.Err(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := ops.Stop(shutdownCtx); err != nil {
		logger.Error("ops listener shutdown failed", logging.Err(err))
	}
	return consumer.Close()
}
