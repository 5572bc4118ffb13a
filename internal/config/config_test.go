package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealscan/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.False(t, cfg.DB.Enabled())
	assert.False(t, cfg.S3.Enabled())

	assert.Equal(t, "gemini", cfg.Vision.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Vision.Model)
	assert.Equal(t, 20, cfg.Vision.TimeoutSecs)
	assert.Equal(t, 2, cfg.Vision.MaxAttempts)
	assert.Equal(t, 0.1, cfg.Vision.Temperature)
	assert.Equal(t, 2048, cfg.Vision.MaxOutputTokens)

	assert.Equal(t, int64(10), cfg.Image.MaxUploadMB)
	assert.Equal(t, 1280, cfg.Image.MaxDimension)
	assert.Equal(t, 80, cfg.Image.JPEGQuality)

	assert.True(t, cfg.Enrich.Enabled)
	assert.Equal(t, 5, cfg.Enrich.CandidateLimit)
	assert.Equal(t, 0.9, cfg.Enrich.MinConfidence)

	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MEALSCAN_SERVER_PORT", ":9090")
	t.Setenv("MEALSCAN_DB_HOST", "db.internal")
	t.Setenv("MEALSCAN_DB_PORT", "5433")
	t.Setenv("MEALSCAN_S3_BUCKET", "meal-photos")
	t.Setenv("MEALSCAN_VISION_API_KEY", "secret-key")
	t.Setenv("MEALSCAN_VISION_MAX_ATTEMPTS", "4")
	t.Setenv("MEALSCAN_ENRICH_ENABLED", "false")
	t.Setenv("MEALSCAN_CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "secret-key", cfg.Vision.APIKey)
	assert.Equal(t, 4, cfg.Vision.MaxAttempts)
	assert.False(t, cfg.Enrich.Enabled)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestDBConfig_DSN(t *testing.T) {
	d := config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "mealscan",
		Password: "pw",
		Name:     "mealscan_db",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://mealscan:pw@localhost:5432/mealscan_db?sslmode=disable", d.DSN())
}
