package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv parses values such as "15m" or "1h".
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
	BodyLimit   int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN builds a lib/pq style connection string.
func (d DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"password=" + d.Password,
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
	}
	return strings.Join(parts, " ")
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type StorageConfig struct {
	Backend   string // local or gcs
	LocalRoot string
	Bucket    string
}

type LogConfig struct {
	Level string
	File  string
}

// LendingConfig holds the product rules shared by the loan services.
type LendingConfig struct {
	MinApplicationAmount   decimal.Decimal
	MinPaymentAmount       decimal.Decimal
	MaxTermMonths          int
	ScheduleInterval       time.Duration
	NotificationBatchSize  int
	RequireRejectionReason bool
	Currency               string
}

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Log      LogConfig
	Lending  LendingConfig
}

// DefaultLending returns the standard product rules.
func DefaultLending() LendingConfig {
	return LendingConfig{
		MinApplicationAmount:  decimal.NewFromInt(1000),
		MinPaymentAmount:      decimal.NewFromInt(100),
		MaxTermMonths:         360,
		ScheduleInterval:      30 * 24 * time.Hour,
		NotificationBatchSize: 500,
		Currency:              "KSh",
	}
}

// Load reads the full configuration from the environment.
func Load() *Config {
	lending := DefaultLending()
	lending.RequireRejectionReason = GetBoolEnv("REQUIRE_REJECTION_REASON", false)
	lending.NotificationBatchSize = GetIntEnv("NOTIFICATION_BATCH_SIZE", lending.NotificationBatchSize)

	return &Config{
		Env: GetEnv("ENV", "development"),
		Server: ServerConfig{
			Port:        GetEnv("PORT", "3000"),
			CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
			BodyLimit:   GetIntEnv("BODY_LIMIT_MB", 8) * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "quickloan"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			TTL:      GetDurationEnv("CACHE_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:  GetEnv("JWT_SECRET", ""),
			AccessTTL:  GetDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL: GetDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			Backend:   GetEnv("STORAGE_BACKEND", "local"),
			LocalRoot: GetEnv("MEDIA_ROOT", "./media"),
			Bucket:    GetEnv("GCS_BUCKET", ""),
		},
		Log: LogConfig{
			Level: GetEnv("LOG_LEVEL", "info"),
			File:  GetEnv("LOG_FILE", "./logs/app.log"),
		},
		Lending: lending,
	}
}
