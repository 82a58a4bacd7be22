package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Hold.DefaultTTL)
	assert.Equal(t, 30*time.Minute, cfg.Hold.MaxTTL)
	assert.Equal(t, "reservation-service", cfg.Kafka.ConsumerGroupID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_HTTP_PORT", "9090")
	t.Setenv("HOLD_DEFAULT_TTL", "5m")
	t.Setenv("HOLD_MAX_TTL", "10m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Minute, cfg.Hold.DefaultTTL)
	assert.Equal(t, 10*time.Minute, cfg.Hold.MaxTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	t.Run("max ttl below default is rejected", func(t *testing.T) {
		t.Setenv("HOLD_DEFAULT_TTL", "30m")
		t.Setenv("HOLD_MAX_TTL", "5m")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid port is rejected", func(t *testing.T) {
		t.Setenv("SERVER_HTTP_PORT", "70000")

		_, err := Load()
		assert.Error(t, err)
	})
}
