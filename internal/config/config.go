// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Data acquisition.
	USGSBaseURL   string
	USGSTimeout   time.Duration
	FetchInterval time.Duration
	Lookback      time.Duration
	MinMagnitude  float64
	FetchLimit    int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka summary sink (optional).
	KafkaBrokers      []string
	KafkaSummaryTopic string
	KafkaEnabled      bool

	// Alerting.
	WebhookURL     string
	WebhookEnabled bool
	EmailRecipient string
	AlertMagnitude float64
	AlertCount     int
	AlertDedupSize int

	// Analysis tuning.
	AnomalyWindowDays     int
	AnomalyThresholdSigma float64
	ClusterRadiusKm       float64
	ClusterWindowHours    float64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	usgsTimeout, err := parseDuration("USGS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	fetchInterval, err := parseDuration("FETCH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	lookback, err := parseDuration("LOOKBACK", "24h")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	// A configured webhook URL enables webhook delivery unless explicitly
	// overridden.
	webhookURL := os.Getenv("WEBHOOK_URL")
	webhookEnabled := webhookURL != ""
	if v := os.Getenv("WEBHOOK_ENABLED"); v != "" {
		webhookEnabled = v == "true"
	}

	cfg := &Config{
		USGSBaseURL:   envOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
		USGSTimeout:   usgsTimeout,
		FetchInterval: fetchInterval,
		Lookback:      lookback,
		MinMagnitude:  parseFloat("MIN_MAGNITUDE", 4.0),
		FetchLimit:    parseInt("FETCH_LIMIT", 1000),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSummaryTopic: envOrDefault("KAFKA_SUMMARY_TOPIC", "seismic-analysis-summaries"),
		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",

		WebhookURL:     webhookURL,
		WebhookEnabled: webhookEnabled,
		EmailRecipient: os.Getenv("EMAIL_RECIPIENT"),
		AlertMagnitude: parseFloat("ALERT_MAGNITUDE", 6.0),
		AlertCount:     parseInt("ALERT_COUNT", 50),
		AlertDedupSize: parseInt("ALERT_DEDUP_SIZE", 1000),

		AnomalyWindowDays:     parseInt("ANOMALY_WINDOW_DAYS", 7),
		AnomalyThresholdSigma: parseFloat("ANOMALY_THRESHOLD_SIGMA", 2.0),
		ClusterRadiusKm:       parseFloat("CLUSTER_RADIUS_KM", 50),
		ClusterWindowHours:    parseFloat("CLUSTER_WINDOW_HOURS", 72),
	}

	if cfg.FetchInterval <= 0 {
		return nil, errors.New("FETCH_INTERVAL must be positive")
	}
	if cfg.Lookback <= 0 {
		return nil, errors.New("LOOKBACK must be positive")
	}
	if cfg.FetchLimit <= 0 {
		return nil, errors.New("FETCH_LIMIT must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SUMMARY_TOPIC is empty")
	}
	if cfg.WebhookEnabled && cfg.WebhookURL == "" {
		return nil, errors.New("WEBHOOK_ENABLED is true but WEBHOOK_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
