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

// Config holds all configuration for the application.
type Config struct {
	ServiceName   string
	Environment   string
	Database      DatabaseConfig
	Server        ServerConfig
	Observability ObservabilityConfig
	CORS          CORSConfig
	RateLimit     RateLimitConfig
	Redis         RedisConfig
	Report        ReportConfig
	Plans         PlansConfig
	Auth          AuthConfig
	Spatial       SpatialConfig
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string
	Host           string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// ObservabilityConfig holds logging/metrics settings.
type ObservabilityConfig struct {
	LogLevel      string
	EnableMetrics bool
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// RateLimitConfig holds the sliding-window limiter's defaults (§4.4).
type RateLimitConfig struct {
	AuthenticatedPerMinute int
	AnonymousPerMinute     int
	Window                 time.Duration
}

// RedisConfig holds the shared rate-limit/quota backend address.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReportConfig holds PDF/QR generation settings (§4.7, §6).
type ReportConfig struct {
	PublicBaseURL string
	ExpiryDays    int
}

// PlansConfig holds the API-key plan -> monthly quota table (§4.3).
// A nil value means unlimited.
type PlansConfig struct {
	Free         *int
	Professional *int
	Enterprise   *int
}

// AuthConfig holds admin JWT exchange settings (§6).
type AuthConfig struct {
	JWTSecret               string
	JWTExpiry               time.Duration
	AdminEmail              string
	AdminPasswordBcryptHash string
}

// SpatialConfig holds C1's query timeout and circuit-breaker thresholds.
type SpatialConfig struct {
	QueryTimeout       time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

func intPtr(v int) *int { return &v }

// Load reads `.env` via godotenv then falls back to process environment
// variables with defaults, mirroring the teacher's Load()/getEnv pattern.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "greengate-screening"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_POSTGRES_HOST", "localhost"),
			Port:     getEnv("DB_POSTGRES_PORT", "5432"),
			User:     getEnv("DB_POSTGRES_USER", "postgres"),
			Password: getEnv("DB_POSTGRES_PASSWORD", "postgres"),
			Name:     getEnv("DB_POSTGRES_DBNAME", "greengate"),
			SSLMode:  getEnv("DB_POSTGRES_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_POSTGRES_MAX_CONNS", 10),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVICE_PORT", "8000"),
			Host:           getEnv("HOST", "0.0.0.0"),
			MaxBodyBytes:   getEnvAsInt64("MAX_BODY_BYTES", 5*1024*1024),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
		},
		RateLimit: RateLimitConfig{
			AuthenticatedPerMinute: getEnvAsInt("RATE_LIMIT_AUTHENTICATED_PER_MIN", 100),
			AnonymousPerMinute:     getEnvAsInt("RATE_LIMIT_ANONYMOUS_PER_MIN", 20),
			Window:                 getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Report: ReportConfig{
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "https://greengate.example.com"),
			ExpiryDays:    getEnvAsInt("AUDIT_RECORD_EXPIRY_DAYS", 90),
		},
		Plans: PlansConfig{
			Free:         intPtr(getEnvAsInt("PLAN_QUOTA_FREE", 3)),
			Professional: intPtr(getEnvAsInt("PLAN_QUOTA_PROFESSIONAL", 50)),
			Enterprise:   nil,
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			JWTExpiry:               getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
			AdminEmail:              getEnv("ADMIN_EMAIL", "admin@greengate.local"),
			AdminPasswordBcryptHash: getEnv("ADMIN_PASSWORD_BCRYPT_HASH", ""),
		},
		Spatial: SpatialConfig{
			QueryTimeout:       getEnvAsDuration("SPATIAL_QUERY_TIMEOUT", 10*time.Second),
			BreakerMaxFailures: uint32(getEnvAsInt("SPATIAL_BREAKER_MAX_FAILURES", 5)),
			BreakerOpenTimeout: getEnvAsDuration("SPATIAL_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}

	log.Printf("configuration loaded: service=%s env=%s server=%s:%s db=%s:%s/%s",
		cfg.ServiceName, cfg.Environment, cfg.Server.Host, cfg.Server.Port,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	return cfg
}

// Validate checks required fields, matching the teacher's Validate() shape.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_POSTGRES_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_POSTGRES_PORT is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_POSTGRES_USER is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_POSTGRES_DBNAME is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("SERVICE_PORT is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
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
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
