package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CatalogPath     string
	CycleInterval   time.Duration
	WorkerCount     int
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// AEMET feed configuration. Radar processing is feature-flagged by the
	// API key: unset forces gauge-only cycles.
	AEMETBaseURL   string
	AEMETAPIKey    string
	AEMETTimeout   time.Duration
	RadarEnabled   bool
	RadarCacheSize int

	// Kafka alert broadcasting.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cycleInterval, err := parseDuration("CYCLE_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	aemetTimeout, err := parseDuration("AEMET_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	workerCount, err := parsePositiveInt("WORKER_COUNT", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	radarCacheSize, err := parsePositiveInt("RADAR_CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("AEMET_API_KEY")
	radarEnabled := apiKey != ""

	kafkaBrokers := parseBrokers(envOrDefault("KAFKA_BROKERS", ""))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		CatalogPath:     envOrDefault("CATALOG_PATH", "basins.yaml"),
		CycleInterval:   cycleInterval,
		WorkerCount:     workerCount,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AEMETBaseURL:   envOrDefault("AEMET_BASE_URL", "https://opendata.aemet.es/opendata/api"),
		AEMETAPIKey:    apiKey,
		AEMETTimeout:   aemetTimeout,
		RadarEnabled:   radarEnabled,
		RadarCacheSize: radarCacheSize,

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    kafkaBrokers,
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "flood-alerts"),
	}

	if cfg.CatalogPath == "" {
		return nil, errors.New("CATALOG_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ALERT_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
