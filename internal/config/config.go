package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process. Values come from
// env; development defaults keep a local stack bootable without any env file.
type Config struct {
	Env  string
	Port int

	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioUseSSL     bool
	RecordingBucket string

	MaxUploadBytes    int64
	AllowedMediaTypes []string

	CORSOrigins []string
}

const (
	defaultPort          = 8080
	defaultTokenTTL      = time.Hour
	defaultMaxUploadMB   = 500
	defaultRecordingsBkt = "call-recordings"
)

// Load reads configuration from the environment.
func Load() (*Config, error) {
	c := &Config{
		Env:             envOr("APP_ENV", "development"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        defaultTokenTTL,
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:   envOr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:  envOr("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:  envOr("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:     os.Getenv("MINIO_USE_SSL") == "true",
		RecordingBucket: envOr("RECORDING_BUCKET", defaultRecordingsBkt),
		AllowedMediaTypes: []string{
			"audio/mpeg", "audio/wav", "audio/mp4", "video/mp4", "text/plain",
		},
		CORSOrigins: strings.Split(envOr("CORS_ORIGINS", "http://localhost:3000"), ","),
	}

	c.Port = defaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		c.Port = port
	}

	if ttlStr := os.Getenv("TOKEN_TTL_MINUTES"); ttlStr != "" {
		minutes, err := strconv.Atoi(ttlStr)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES %q", ttlStr)
		}
		c.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", dbStr, err)
		}
		c.RedisDB = db
	}

	maxMB := defaultMaxUploadMB
	if mbStr := os.Getenv("MAX_UPLOAD_MB"); mbStr != "" {
		mb, err := strconv.Atoi(mbStr)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", mbStr)
		}
		maxMB = mb
	}
	c.MaxUploadBytes = int64(maxMB) * 1024 * 1024

	return c, nil
}

// MediaTypeAllowed reports whether an uploaded content type is accepted.
func (c *Config) MediaTypeAllowed(contentType string) bool {
	// Ignore multipart parameters such as "; charset=utf-8".
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	for _, allowed := range c.AllowedMediaTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
