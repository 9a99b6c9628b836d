package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/segments.geojson", cfg.SegmentsPath)
	assert.Empty(t, cfg.SafetyCSVPath)
	assert.Empty(t, cfg.SafePointsPath)
	assert.Equal(t, 51, cfg.UTMZone)
	assert.True(t, cfg.UTMNorthern)
	assert.Equal(t, 1.0, cfg.MergeTolerance)
	assert.Equal(t, 20.0, cfg.TurnThresholdDeg)
	assert.Equal(t, 5.0, cfg.WalkingSpeedKmh)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "segment-safety-updates", cfg.KafkaTopic)
	assert.Equal(t, "route-engine", cfg.KafkaGroupID)
	assert.Equal(t, 30*time.Second, cfg.RebuildInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SEGMENTS_PATH", "/data/manila.geojson")
	t.Setenv("SAFETY_CSV_PATH", "/data/safety.csv")
	t.Setenv("SAFE_POINTS_PATH", "/data/centers.geojson")
	t.Setenv("UTM_ZONE", "33")
	t.Setenv("UTM_NORTHERN", "false")
	t.Setenv("MERGE_TOLERANCE", "0.5")
	t.Setenv("TURN_THRESHOLD_DEG", "30")
	t.Setenv("WALKING_SPEED_KMH", "4.5")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-updates")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("REBUILD_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/manila.geojson", cfg.SegmentsPath)
	assert.Equal(t, "/data/safety.csv", cfg.SafetyCSVPath)
	assert.Equal(t, "/data/centers.geojson", cfg.SafePointsPath)
	assert.Equal(t, 33, cfg.UTMZone)
	assert.False(t, cfg.UTMNorthern)
	assert.Equal(t, 0.5, cfg.MergeTolerance)
	assert.Equal(t, 30.0, cfg.TurnThresholdDeg)
	assert.Equal(t, 4.5, cfg.WalkingSpeedKmh)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-updates", cfg.KafkaTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, time.Minute, cfg.RebuildInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-5s"},
		{"bad zone", "UTM_ZONE", "sixty-one"},
		{"zone out of range", "UTM_ZONE", "61"},
		{"zero tolerance", "MERGE_TOLERANCE", "0"},
		{"bad walking speed", "WALKING_SPEED_KMH", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
