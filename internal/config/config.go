package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFeedURL is the JMA earthquake list endpoint.
const DefaultFeedURL = "https://www.jma.go.jp/bosai/quake/data/list.json"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// JMA feed polling.
	FeedURL       string
	FeedTimeout   time.Duration
	PollInterval  time.Duration
	MaxDepthKm    *float64 // nil keeps every depth
	SeenCacheSize int

	// Kafka sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("JMA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}

	maxDepth, err := parseMaxDepth()
	if err != nil {
		return nil, err
	}
	seenCacheSize, err := parseSeenCacheSize()
	if err != nil {
		return nil, err
	}

	kafkaEnabled := true
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedURL:       sharedcfg.EnvOrDefault("JMA_FEED_URL", DefaultFeedURL),
		FeedTimeout:   feedTimeout,
		PollInterval:  pollInterval,
		MaxDepthKm:    maxDepth,
		SeenCacheSize: seenCacheSize,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "jma-earthquakes"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMaxDepth() (*float64, error) {
	s := os.Getenv("MAX_DEPTH_KM")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_DEPTH_KM: %w", err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid MAX_DEPTH_KM %q: must be a finite, non-negative number", s)
	}
	return &v, nil
}

func parseSeenCacheSize() (int, error) {
	s := os.Getenv("SEEN_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid SEEN_CACHE_SIZE %q: must be a positive integer", s)
	}
	return n, nil
}
