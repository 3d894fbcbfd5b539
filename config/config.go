package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Identity      IdentityConfig
	Storage       StorageConfig
	Gateway       GatewayConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// IdentityConfig holds identity-provider configuration
type IdentityConfig struct {
	BaseURL     string // identity provider base URL
	APIKey      string // service key sent on every provider request
	HTTPTimeout time.Duration
	CookieName  string // session cookie carrying the access token
}

// StorageConfig holds object-storage configuration for access grants
type StorageConfig struct {
	Region      string
	Bucket      string
	Endpoint    string // optional, for S3-compatible stores
	AccessKey   string
	SecretKey   string
	GrantTTL    time.Duration // default lifetime of an access grant
	GrantMaxTTL time.Duration // hard upper bound for any grant
}

// GatewayConfig holds route-class and privilege configuration
type GatewayConfig struct {
	SignInPath       string // sign-in entry point
	PhoneCollectPath string // phone-collection path
	ProtectedArea    string // main protected area (redirect target after auth)
	ProtectedPrefix  string // browser paths requiring identity
	AdminPrefix      string // browser paths requiring administrator privilege
	AuthPrefix       string // auth pages (sign-in/sign-up)
	StaticPrefixes   []string

	AdminEmailMarker string // substring marking administrative accounts
	AdminEmailDomain string // reserved organization domain
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Identity: IdentityConfig{
			BaseURL:     getEnv("IDP_BASE_URL", ""),
			APIKey:      getEnv("IDP_API_KEY", ""),
			HTTPTimeout: getEnvAsDuration("IDP_HTTP_TIMEOUT", 10*time.Second),
			CookieName:  getEnv("SESSION_COOKIE_NAME", "session"),
		},
		Storage: StorageConfig{
			Region:      getEnv("STORAGE_REGION", "ap-south-1"),
			Bucket:      getEnv("STORAGE_BUCKET", ""),
			Endpoint:    getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:   getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:   getEnv("STORAGE_SECRET_KEY", ""),
			GrantTTL:    getEnvAsDuration("GRANT_TTL", 15*time.Minute),
			GrantMaxTTL: getEnvAsDuration("GRANT_MAX_TTL", 12*time.Hour),
		},
		Gateway: GatewayConfig{
			SignInPath:       getEnv("SIGN_IN_PATH", "/auth/sign-in"),
			PhoneCollectPath: getEnv("PHONE_COLLECT_PATH", "/auth/phone"),
			ProtectedArea:    getEnv("PROTECTED_AREA", "/dashboard"),
			ProtectedPrefix:  getEnv("PROTECTED_PREFIX", "/dashboard"),
			AdminPrefix:      getEnv("ADMIN_PREFIX", "/admin"),
			AuthPrefix:       getEnv("AUTH_PREFIX", "/auth"),
			StaticPrefixes:   getEnvAsList("STATIC_PREFIXES", []string{"/static/", "/assets/", "/favicon.ico"}),
			AdminEmailMarker: getEnv("ADMIN_EMAIL_MARKER", "admin"),
			AdminEmailDomain: getEnv("ADMIN_EMAIL_DOMAIN", "revisetax.com"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// Collaborators are required in production
	if c.IsProduction() {
		if c.Identity.BaseURL == "" {
			return fmt.Errorf("identity provider base URL is required in production")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required in production")
		}
	}

	if c.Storage.GrantTTL <= 0 {
		return fmt.Errorf("grant TTL must be positive")
	}
	if c.Storage.GrantMaxTTL < c.Storage.GrantTTL {
		return fmt.Errorf("grant max TTL must not be below grant TTL")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "dev"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "docs"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

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
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
