package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	httpadapter "github.com/seismowatch/seismo-alert/internal/adapter/http"
	kafkaadapter "github.com/seismowatch/seismo-alert/internal/adapter/kafka"
	"github.com/seismowatch/seismo-alert/internal/alert"
	"github.com/seismowatch/seismo-alert/internal/config"
	"github.com/seismowatch/seismo-alert/internal/monitor"
	"github.com/seismowatch/seismo-alert/internal/observability"
	"github.com/seismowatch/seismo-alert/internal/usgs"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, logger)
	fetcher := usgs.NewRollingFetcher(client, cfg.Lookback, cfg.MinMagnitude, cfg.FetchLimit)

	manager := alert.NewManager(
		alert.LargeEarthquake(cfg.AlertMagnitude),
		alert.HighRate(cfg.AlertCount),
	)

	var notifiers []alert.Notifier
	if cfg.WebhookEnabled {
		notifiers = append(notifiers, alert.NewDeduper(
			alert.NewWebhookNotifier(cfg.WebhookURL, 10*time.Second, logger), cfg.AlertDedupSize))
		logger.Info("webhook notifications enabled")
	}
	if cfg.EmailRecipient != "" {
		notifiers = append(notifiers, alert.NewDeduper(
			alert.NewEmailNotifier(cfg.EmailRecipient, logger), cfg.AlertDedupSize))
		logger.Info("email notifications enabled", "recipient", cfg.EmailRecipient)
	}

	// Summary sink (feature-flagged via KAFKA_ENABLED).
	var sink monitor.SummarySink
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		sink = kafkaWriter
		logger.Info("kafka summary sink enabled", "topic", cfg.KafkaSummaryTopic)
	} else {
		logger.Info("kafka summary sink disabled")
	}

	mon := monitor.New(fetcher, manager, notifiers, sink, logger, metrics, monitor.Options{
		Interval:       cfg.FetchInterval,
		WindowDays:     cfg.AnomalyWindowDays,
		ThresholdSigma: cfg.AnomalyThresholdSigma,
		RadiusKm:       cfg.ClusterRadiusKm,
		WindowHours:    cfg.ClusterWindowHours,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, mon, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the monitoring loop.
	go func() {
		if err := mon.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
