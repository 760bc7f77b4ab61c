package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
	assert.Equal(t, 72*time.Hour, cfg.StaleThreshold)
	assert.Equal(t, ChangeFeedNone, cfg.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.True(t, cfg.Offline())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo")
	t.Setenv("DATABASE_URL", "postgres://crm@localhost/crm")
	t.Setenv("SWEEP_INTERVAL", "15m")
	t.Setenv("CHANGEFEED_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_GROUP_ID", "crm-prod")
	t.Setenv("CORS_ORIGINS", "https://crm.imersao.com.br,http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Offline())
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, ChangeFeedKafka, cfg.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "crm-prod", cfg.KafkaGroupID)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo")
	t.Setenv("CHANGEFEED_DRIVER", "nats")

	_, err := Load()
	assert.ErrorContains(t, err, "CHANGEFEED_DRIVER")
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := &Config{TimeZone: "America/Sao_Paulo"}
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())

	cfg.TimeZone = "Marte/Olympus"
	assert.Equal(t, time.Local, cfg.Location())
}
