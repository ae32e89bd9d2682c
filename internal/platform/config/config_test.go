package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"KINFOLK_ADDR", "KINFOLK_ENV", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "REPORT_TTL", "SHARE_SIGNING_KEY"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "kinfolk.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, 24*time.Hour, cfg.Reports.TTL)
	assert.Equal(t, 60*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.NotEmpty(t, cfg.Reports.SigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KINFOLK_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REPORT_TTL", "90m")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("HTTP_WRITE_TIMEOUT", "2m")

	cfg := FromEnv()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Minute, cfg.Reports.TTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.WriteTimeout)
}
