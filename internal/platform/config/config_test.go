package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.AdminAddr)
	assert.Equal(t, "procsync.jobs", cfg.JobsTopic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.RefreshLockTTL)
	assert.Zero(t, cfg.SweepLimit)
}

func TestFromEnvRedisIsOptional(t *testing.T) {
	t.Setenv("PROCSYNC_REDIS_URL", "")
	assert.Empty(t, FromEnv().RedisURL, "unset redis must stay empty so the worker can fall back to the local lock")

	t.Setenv("PROCSYNC_REDIS_URL", "redis://cache:6379/1")
	assert.Equal(t, "redis://cache:6379/1", FromEnv().RedisURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PROCSYNC_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("PROCSYNC_REFRESH_LOCK_TTL", "90s")
	t.Setenv("PROCSYNC_SWEEP_LIMIT", "200")

	cfg := FromEnv()
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.RefreshLockTTL)
	assert.Equal(t, 200, cfg.SweepLimit)
}
