package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Enabled reports whether enough is set to talk to S3.
func (c AWSConfig) Enabled() bool {
	return c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != ""
}

type Config struct {
	Port            string
	GinMode         string
	StorageDriver   string
	DB              DatabaseConfig
	RedisURL        string
	RabbitURL       string
	RabbitExchange  string
	JWTSecret       string
	PasswordHashing bool
	SurgeTimezone   string
	QuoteTTL        time.Duration
	AWS             AWSConfig
	FeedbackDir     string
	CORSOrigins     []string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}

	var cfg Config
	cfg.Port = envOrDefault("PORT", "8080")
	cfg.GinMode = envOrDefault("GIN_MODE", "debug")
	cfg.StorageDriver = strings.ToLower(envOrDefault("STORAGE_DRIVER", StorageMemory))
	cfg.DB = DatabaseConfig{
		Host:     envOrDefault("DB_HOST", "localhost"),
		User:     envOrDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     envOrDefault("DB_NAME", "rideflow"),
		Port:     envOrDefault("DB_PORT", "5432"),
	}
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RabbitURL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitExchange = envOrDefault("RABBITMQ_EXCHANGE", "rideflow.events")
	cfg.JWTSecret = envOrDefault("JWT_SECRET", "rideflow-dev-secret")
	cfg.PasswordHashing = envOrDefaultBool("PASSWORD_HASHING", false)
	cfg.SurgeTimezone = os.Getenv("SURGE_TIMEZONE")
	cfg.AWS = AWSConfig{
		Region:          os.Getenv("AWS_REGION"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Bucket:          os.Getenv("AWS_S3_BUCKET"),
	}
	cfg.FeedbackDir = envOrDefault("FEEDBACK_DIR", "./data/feedback")
	cfg.CORSOrigins = splitList(envOrDefault("CORS_ORIGINS", "*"))

	ttl, err := time.ParseDuration(envOrDefault("QUOTE_TTL", "5m"))
	if err != nil {
		return cfg, fmt.Errorf("invalid QUOTE_TTL: %w", err)
	}
	if ttl <= 0 {
		return cfg, fmt.Errorf("invalid QUOTE_TTL: must be positive")
	}
	cfg.QuoteTTL = ttl

	switch cfg.StorageDriver {
	case StorageMemory, StoragePostgres:
	default:
		return cfg, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// SurgeLocation resolves the surge timezone, falling back to local time.
func (c Config) SurgeLocation() *time.Location {
	if c.SurgeTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.SurgeTimezone)
	if err != nil {
		log.Printf("Unknown SURGE_TIMEZONE %q, using local time", c.SurgeTimezone)
		return time.Local
	}
	return loc
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
