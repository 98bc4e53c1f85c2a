package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "Europe/Oslo", cfg.Location().String())
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "daycare-api", cfg.JWT.Issuer)
	assert.Equal(t, 2*1024*1024, cfg.Photos.MaxBytes)
	assert.True(t, cfg.Reports.Enabled)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadFileReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=9090\nTIMEZONE=UTC\nALLOWED_ORIGINS= https://app.example.no , ,https://admin.example.no\nMQTT_TOPIC_PREFIX=kindergarten/\nAPI_PREFIX=api/v2/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, []string{"https://app.example.no", "https://admin.example.no"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "kindergarten", cfg.Events.TopicPrefix)
	assert.Equal(t, "/api/v2", cfg.APIPrefix)
}

func TestLoadFileEnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("JWT_SINGLE_SESSION", "true")
	t.Setenv("ANNOUNCEMENT_CACHE_TTL", "not-a-duration")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.True(t, cfg.JWT.SingleSession)
	assert.Equal(t, 10*time.Minute, cfg.Cache.AnnouncementTTL)
	assert.Equal(t, "daycare", cfg.Cache.KeyPrefix)
}

func TestLoadFileRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := LoadFile(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set in production")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Port:     8080,
		Timezone: "Mars/Olympus",
		JWT:      JWTConfig{Secret: "s", Expiration: time.Hour, RefreshExpiration: time.Minute},
		Events:   EventsConfig{Enabled: true},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_EXPIRATION")
	assert.Contains(t, err.Error(), "PHOTO_MAX_BYTES")
	assert.Contains(t, err.Error(), "MQTT_BROKER")
}

func TestDSNAndAddr(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "daycare", SSLMode: "disable", AppName: "daycare-api"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=daycare sslmode=disable application_name=daycare-api", db.DSN())

	redis := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", redis.Addr())
}
