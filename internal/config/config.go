package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Vision VisionConfig
	Image  ImageConfig
	Enrich EnrichConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the food composition
// database. An empty host disables the database entirely; the service
// then runs without enrichment.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Enabled reports whether a composition database is configured.
func (d *DBConfig) Enabled() bool {
	return d.Host != ""
}

// S3Config holds AWS S3 settings for meal photo storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether photo storage is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// VisionConfig holds vision provider settings. MaxAttempts counts total
// attempts (first call included); the vision call is expensive, so the
// default budget is deliberately small.
type VisionConfig struct {
	Provider        string  `mapstructure:"provider"`
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	TimeoutSecs     int     `mapstructure:"timeout_secs"`
	MaxAttempts     int     `mapstructure:"max_attempts"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

// ImageConfig holds image preparation settings.
type ImageConfig struct {
	MaxUploadMB  int64 `mapstructure:"max_upload_mb"`
	MaxDimension int   `mapstructure:"max_dimension"`
	JPEGQuality  int   `mapstructure:"jpeg_quality"`
}

// EnrichConfig holds nutrition database enrichment settings.
type EnrichConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	CandidateLimit int     `mapstructure:"candidate_limit"`
	MinConfidence  float64 `mapstructure:"min_confidence"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MEALSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEALSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults (empty host = enrichment database not configured)
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "mealscan")
	v.SetDefault("db.password", "mealscan_secret")
	v.SetDefault("db.name", "mealscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults (empty bucket = photo storage disabled)
	v.SetDefault("s3.region", "ap-northeast-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Vision defaults
	v.SetDefault("vision.provider", "gemini")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "gemini-2.0-flash")
	v.SetDefault("vision.timeout_secs", 20)
	v.SetDefault("vision.max_attempts", 2)
	v.SetDefault("vision.temperature", 0.1)
	v.SetDefault("vision.max_output_tokens", 2048)

	// Image defaults
	v.SetDefault("image.max_upload_mb", 10)
	v.SetDefault("image.max_dimension", 1280)
	v.SetDefault("image.jpeg_quality", 80)

	// Enrich defaults
	v.SetDefault("enrich.enabled", true)
	v.SetDefault("enrich.candidate_limit", 5)
	v.SetDefault("enrich.min_confidence", 0.9)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "MEALSCAN_SERVER_PORT",
		"server.read_timeout":      "MEALSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "MEALSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":       "MEALSCAN_SERVER_ENVIRONMENT",
		"db.host":                  "MEALSCAN_DB_HOST",
		"db.port":                  "MEALSCAN_DB_PORT",
		"db.user":                  "MEALSCAN_DB_USER",
		"db.password":              "MEALSCAN_DB_PASSWORD",
		"db.name":                  "MEALSCAN_DB_NAME",
		"db.sslmode":               "MEALSCAN_DB_SSLMODE",
		"db.max_open":              "MEALSCAN_DB_MAX_OPEN",
		"db.max_idle":              "MEALSCAN_DB_MAX_IDLE",
		"s3.region":                "MEALSCAN_S3_REGION",
		"s3.bucket":                "MEALSCAN_S3_BUCKET",
		"s3.endpoint":              "MEALSCAN_S3_ENDPOINT",
		"s3.access_key":            "MEALSCAN_S3_ACCESS_KEY",
		"s3.secret_key":            "MEALSCAN_S3_SECRET_KEY",
		"s3.presign_expiry":        "MEALSCAN_S3_PRESIGN_EXPIRY",
		"vision.provider":          "MEALSCAN_VISION_PROVIDER",
		"vision.api_key":           "MEALSCAN_VISION_API_KEY",
		"vision.model":             "MEALSCAN_VISION_MODEL",
		"vision.timeout_secs":      "MEALSCAN_VISION_TIMEOUT_SECS",
		"vision.max_attempts":      "MEALSCAN_VISION_MAX_ATTEMPTS",
		"vision.temperature":       "MEALSCAN_VISION_TEMPERATURE",
		"vision.max_output_tokens": "MEALSCAN_VISION_MAX_OUTPUT_TOKENS",
		"image.max_upload_mb":      "MEALSCAN_IMAGE_MAX_UPLOAD_MB",
		"image.max_dimension":      "MEALSCAN_IMAGE_MAX_DIMENSION",
		"image.jpeg_quality":       "MEALSCAN_IMAGE_JPEG_QUALITY",
		"enrich.enabled":           "MEALSCAN_ENRICH_ENABLED",
		"enrich.candidate_limit":   "MEALSCAN_ENRICH_CANDIDATE_LIMIT",
		"enrich.min_confidence":    "MEALSCAN_ENRICH_MIN_CONFIDENCE",
		"cors.allowed_origins":     "MEALSCAN_CORS_ALLOWED_ORIGINS",
		"log.level":                "MEALSCAN_LOG_LEVEL",
		"log.format":               "MEALSCAN_LOG_FORMAT",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins come through as a single string
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
