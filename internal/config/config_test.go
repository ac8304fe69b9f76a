package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentflow")
	t.Setenv("SWEEP_AT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("STRICT_TRANSITIONS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint(0), cfg.Sweep.Hour)
	assert.Equal(t, uint(0), cfg.Sweep.Minute)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.StrictTransitions)
	assert.Equal(t, 10*time.Minute, cfg.Sweep.LockTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentflow")
	t.Setenv("SWEEP_AT", "02:30")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STRICT_TRANSITIONS", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint(2), cfg.Sweep.Hour)
	assert.Equal(t, uint(30), cfg.Sweep.Minute)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.StrictTransitions)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_RejectsBadSweepClock(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentflow")
	t.Setenv("SWEEP_AT", "25:99")

	_, err := Load()
	assert.Error(t, err)
}
