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
	StoreFirestore = "firestore"
	StoreRedis     = "redis"

	AuthFirebase = "firebase"
	AuthDev      = "dev"
)

type Config struct {
	Server        ServerConfig
	App           AppConfig
	Auth          AuthConfig
	Firebase      FirebaseConfig
	Store         StoreConfig
	Redis         RedisConfig
	Database      DatabaseConfig
	Media         MediaConfig
	Notifications NotificationConfig
	Sync          SyncConfig
	RateLimit     RateLimitConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	Version     string
}

type AuthConfig struct {
	Mode string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type StoreConfig struct {
	Backend string
}

type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	ProfileCacheTTL time.Duration
}

// DatabaseConfig points at the Postgres identity directory. An empty DSN disables it.
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type MediaConfig struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
	MaxSizeKB int
}

type NotificationConfig struct {
	PollInterval time.Duration
	PanelLimit   int
}

type SyncConfig struct {
	Schedule string
	Lookback time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		App: AppConfig{
			ServiceName: getEnv("SERVICE_NAME", "folio-backend"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Auth: AuthConfig{
			Mode: getEnv("AUTH_MODE", AuthFirebase),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreFirestore),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getEnvAsInt("REDIS_DB", 0),
			ProfileCacheTTL: getEnvAsDuration("PROFILE_CACHE_TTL", 30*24*time.Hour),
		},
		Database: DatabaseConfig{
			DSN:          getEnv("DB_DSN", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Media: MediaConfig{
			MaxWidth:  getEnvAsInt("MEDIA_MAX_WIDTH", 1200),
			MaxHeight: getEnvAsInt("MEDIA_MAX_HEIGHT", 1200),
			Quality:   getEnvAsFloat("MEDIA_QUALITY", 0.8),
			MaxSizeKB: getEnvAsInt("MEDIA_MAX_SIZE_KB", 200),
		},
		Notifications: NotificationConfig{
			PollInterval: getEnvAsDuration("NOTIFY_POLL_INTERVAL", 30*time.Second),
			PanelLimit:   getEnvAsInt("NOTIFY_PANEL_LIMIT", 50),
		},
		Sync: SyncConfig{
			Schedule: getEnv("SYNC_SCHEDULE", "0 */15 * * * *"),
			Lookback: getEnvAsDuration("SYNC_LOOKBACK", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case StoreFirestore:
		if c.Firebase.CredentialsPath == "" && os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firestore backend")
		}
	case StoreRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreFirestore, StoreRedis, c.Store.Backend)
	}

	switch c.Auth.Mode {
	case AuthFirebase:
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	case AuthDev:
		if c.App.Environment == "production" {
			return fmt.Errorf("AUTH_MODE=dev is not allowed in production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthFirebase, AuthDev, c.Auth.Mode)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.Media.Quality < 0.5 || c.Media.Quality > 1 {
		return fmt.Errorf("MEDIA_QUALITY must be between 0.5 and 1, got %v", c.Media.Quality)
	}
	if c.Media.MaxWidth <= 0 || c.Media.MaxHeight <= 0 || c.Media.MaxSizeKB <= 0 {
		return fmt.Errorf("MEDIA_MAX_WIDTH, MEDIA_MAX_HEIGHT and MEDIA_MAX_SIZE_KB must be positive")
	}

	if c.Notifications.PollInterval < time.Second {
		return fmt.Errorf("NOTIFY_POLL_INTERVAL must be at least 1s")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
