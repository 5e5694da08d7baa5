package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	AppURL            string `mapstructure:"APP_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Booking store.
	StoreDriver  string `mapstructure:"STORE_DRIVER"` // "mongo" or "postgres"
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	PostgresDSN  string `mapstructure:"POSTGRES_DSN"`

	// Redis configuration. The lock store and the task queue use separate DBs.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	LockStoreMaxRetries   int `mapstructure:"LOCK_STORE_MAX_RETRIES"`
	LockStoreMinBackoffMS int `mapstructure:"LOCK_STORE_MIN_BACKOFF_MS"`
	LockStoreMaxBackoffMS int `mapstructure:"LOCK_STORE_MAX_BACKOFF_MS"`

	// Slot scheduling.
	SlotLockDurationMinutes int `mapstructure:"SLOT_LOCK_DURATION_MINUTES"`
	SlotStrideMinutes       int `mapstructure:"SLOT_STRIDE_MINUTES"`

	// Payments and notifications.
	StripeSecretKey         string `mapstructure:"STRIPE_SECRET_KEY"`
	ResendAPIKey            string `mapstructure:"RESEND_API_KEY"`
	EmailFrom               string `mapstructure:"EMAIL_FROM"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Calendar providers.
	GoogleClientID        string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	MicrosoftClientID     string `mapstructure:"MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string `mapstructure:"MICROSOFT_CLIENT_SECRET"`
	MicrosoftTenantID     string `mapstructure:"MICROSOFT_TENANT_ID"`

	// Background fan-out worker.
	FanoutMaxRetry    int `mapstructure:"FANOUT_MAX_RETRY"`
	WorkerConcurrency int `mapstructure:"WORKER_CONCURRENCY"`
}

var configKeys = []string{
	"APP_PORT", "APP_URL", "ENV", "JWT_SECRET", "LOG_LEVEL", "MAX_REQUESTS_PER_MIN",
	"STORE_DRIVER", "DATABASE_URL", "DATABASE_NAME", "POSTGRES_DSN",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_LOCK_DB", "REDIS_QUEUE_DB",
	"LOCK_STORE_MAX_RETRIES", "LOCK_STORE_MIN_BACKOFF_MS", "LOCK_STORE_MAX_BACKOFF_MS",
	"SLOT_LOCK_DURATION_MINUTES", "SLOT_STRIDE_MINUTES",
	"STRIPE_SECRET_KEY", "RESEND_API_KEY", "EMAIL_FROM", "FIREBASE_CREDENTIALS_FILE",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	"MICROSOFT_CLIENT_ID", "MICROSOFT_CLIENT_SECRET", "MICROSOFT_TENANT_ID",
	"FANOUT_MAX_RETRY", "WORKER_CONCURRENCY",
}

// LoadConfig reads config.yaml (from "." or "./config") and environment
// variables into a Config. It fails when the lock store address is missing.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about; bind every key so plain
	// environment variables are picked up without a config file.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "bookinghub")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("LOCK_STORE_MAX_RETRIES", 3)
	v.SetDefault("LOCK_STORE_MIN_BACKOFF_MS", 50)
	v.SetDefault("LOCK_STORE_MAX_BACKOFF_MS", 2000)
	v.SetDefault("SLOT_LOCK_DURATION_MINUTES", 10)
	v.SetDefault("SLOT_STRIDE_MINUTES", 30)
	v.SetDefault("EMAIL_FROM", "noreply@bookinghub.com")
	v.SetDefault("FANOUT_MAX_RETRY", 5)
	v.SetDefault("WORKER_CONCURRENCY", 10)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is not defined")
	}
	if c.SlotLockDurationMinutes <= 0 {
		return fmt.Errorf("SLOT_LOCK_DURATION_MINUTES must be positive, got %d", c.SlotLockDurationMinutes)
	}
	if c.SlotStrideMinutes <= 0 {
		return fmt.Errorf("SLOT_STRIDE_MINUTES must be positive, got %d", c.SlotStrideMinutes)
	}
	if c.LockStoreMaxRetries < 0 {
		return fmt.Errorf("LOCK_STORE_MAX_RETRIES must not be negative, got %d", c.LockStoreMaxRetries)
	}
	if c.LockStoreMaxBackoffMS < c.LockStoreMinBackoffMS {
		return fmt.Errorf("LOCK_STORE_MAX_BACKOFF_MS (%d) is below LOCK_STORE_MIN_BACKOFF_MS (%d)",
			c.LockStoreMaxBackoffMS, c.LockStoreMinBackoffMS)
	}
	switch c.StoreDriver {
	case "mongo", "postgres":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORE_DRIVER is postgres")
	}
	return nil
}

// LockTTL is how long an unreleased slot lock survives.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.SlotLockDurationMinutes) * time.Minute
}

// SlotStride is the spacing between generated slot start times.
func (c *Config) SlotStride() time.Duration {
	return time.Duration(c.SlotStrideMinutes) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
