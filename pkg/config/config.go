package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration

	Mongo    MongoConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	Media    MediaConfig

	// ReconcileInterval schedules counter reconciliation; zero disables it
	ReconcileInterval time.Duration
}

// MongoConfig holds the entity store settings
type MongoConfig struct {
	URI          string
	Database     string
	Transactions bool
	Timeout      time.Duration
}

// PostgresConfig holds the reconciliation audit store settings
type PostgresConfig struct {
	ConnStr string // empty disables the audit store
}

// AuthConfig holds token settings
type AuthConfig struct {
	SecretAccessKey         string
	AccessTokenTTL          time.Duration
	FirebaseCredentialsPath string
}

// MediaConfig holds image upload settings
type MediaConfig struct {
	CloudinaryURL string
	UploadFolder  string
	MaxUploadSize int64
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory when one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		Mongo: MongoConfig{
			URI:          getEnv("MONGO_URI", ""),
			Database:     getEnv("MONGO_DATABASE", "blogspace"),
			Transactions: getBoolEnv("MONGO_TRANSACTIONS", false),
			Timeout:      getDurationEnv("STORE_TIMEOUT", 5*time.Second),
		},
		Postgres: PostgresConfig{
			ConnStr: getEnv("POSTGRES_CONN_STR", ""),
		},
		Auth: AuthConfig{
			SecretAccessKey:         getEnv("SECRET_ACCESS_KEY", ""),
			AccessTokenTTL:          getDurationEnv("ACCESS_TOKEN_TTL", 72*time.Hour),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Media: MediaConfig{
			CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
			UploadFolder:  getEnv("UPLOAD_FOLDER", "blogspace"),
			MaxUploadSize: getInt64Env("MAX_UPLOAD_SIZE", 10*1024*1024),
		},
		ReconcileInterval: getDurationEnv("RECONCILE_INTERVAL", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("MONGO_DATABASE is required")
	}
	if c.Auth.SecretAccessKey == "" {
		return fmt.Errorf("SECRET_ACCESS_KEY is required")
	}
	if c.Mongo.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
