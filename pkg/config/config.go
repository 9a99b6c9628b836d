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
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset inputs.
	SegmentsPath   string
	SafetyCSVPath  string // optional, merged over the GeoJSON safety scores
	SafePointsPath string // optional, disables evacuation routing when unset

	// Projection and graph construction.
	UTMZone        int
	UTMNorthern    bool
	MergeTolerance float64

	// Direction synthesis.
	TurnThresholdDeg float64
	WalkingSpeedKmh  float64

	// Safety update stream.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaGroupID    string
	RebuildInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	rebuildInterval, err := parseDuration("REBUILD_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	utmZone, err := parseInt("UTM_ZONE", 51)
	if err != nil {
		return nil, err
	}
	mergeTolerance, err := parseFloat("MERGE_TOLERANCE", 1.0)
	if err != nil {
		return nil, err
	}
	turnThreshold, err := parseFloat("TURN_THRESHOLD_DEG", 20)
	if err != nil {
		return nil, err
	}
	walkingSpeed, err := parseFloat("WALKING_SPEED_KMH", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SegmentsPath:   envOrDefault("SEGMENTS_PATH", "data/segments.geojson"),
		SafetyCSVPath:  os.Getenv("SAFETY_CSV_PATH"),
		SafePointsPath: os.Getenv("SAFE_POINTS_PATH"),

		UTMZone:        utmZone,
		UTMNorthern:    envOrDefault("UTM_NORTHERN", "true") == "true",
		MergeTolerance: mergeTolerance,

		TurnThresholdDeg: turnThreshold,
		WalkingSpeedKmh:  walkingSpeed,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "segment-safety-updates"),
		KafkaGroupID:    envOrDefault("KAFKA_GROUP_ID", "route-engine"),
		RebuildInterval: rebuildInterval,
	}

	if cfg.SegmentsPath == "" {
		return nil, errors.New("SEGMENTS_PATH is required")
	}
	if cfg.UTMZone < 1 || cfg.UTMZone > 60 {
		return nil, fmt.Errorf("UTM_ZONE must be 1..60, got %d", cfg.UTMZone)
	}
	if cfg.MergeTolerance <= 0 {
		return nil, errors.New("MERGE_TOLERANCE must be positive")
	}
	if cfg.WalkingSpeedKmh <= 0 {
		return nil, errors.New("WALKING_SPEED_KMH must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
