package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Remote cart and order backends.
const (
	RemotePostgres  = "postgres"
	RemoteMongo     = "mongo"
	RemoteFirestore = "firestore"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Remote    RemoteConfig
	Mongo     MongoConfig
	Firestore FirestoreConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Store     StoreConfig
	Pages     PagesConfig
	Catalog   CatalogConfig
	S3        S3Config
	Breaker   BreakerConfig
	Session   SessionConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds the device-local cart store configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration // zero keeps carts forever
}

// RemoteConfig selects the per-user cart and order backend.
type RemoteConfig struct {
	Backend         string // "postgres", "mongo" or "firestore"
	ClearOnCheckout bool
}

// MongoConfig holds MongoDB configuration.
type MongoConfig struct {
	URI      string
	Database string
}

// FirestoreConfig holds Firestore configuration.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
	File   string // optional rotated log file
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey      string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

// StoreConfig holds currency and shipping settings.
type StoreConfig struct {
	Currency    string
	Glyph       string
	Locale      string
	ShippingFee int64
}

// PagesConfig holds the client pages used as redirects.
type PagesConfig struct {
	Login        string
	Confirmation string
	Detail       string
}

// CatalogConfig holds the product catalogue location.
type CatalogConfig struct {
	Path string
}

// S3Config holds AWS S3 configuration for catalogue files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// BreakerConfig holds the remote store circuit breaker settings.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// SessionConfig holds in-memory session settings.
type SessionConfig struct {
	IdleTimeout time.Duration // zero disables eviction
}

// Load loads configuration from environment variables. Values in a .env
// file in the working directory are used when the variable is unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "storefront"),
			TTL:      getEnvAsDuration("LOCAL_CART_TTL", 0),
		},
		Remote: RemoteConfig{
			Backend:         getEnv("REMOTE_BACKEND", RemotePostgres),
			ClearOnCheckout: getEnvAsBool("CHECKOUT_CLEAR_REMOTE_CART", false),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "storefront"),
		},
		Firestore: FirestoreConfig{
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Auth: AuthConfig{
			APIKey:      getEnv("API_KEY", ""),
			JWTSecret:   getEnv("JWT_SECRET", ""),
			JWTIssuer:   getEnv("JWT_ISSUER", ""),
			JWTAudience: getEnv("JWT_AUDIENCE", ""),
		},
		Store: StoreConfig{
			Currency:    getEnv("STORE_CURRENCY", "BDT"),
			Glyph:       getEnv("STORE_CURRENCY_GLYPH", "৳"),
			Locale:      getEnv("STORE_LOCALE", "en-BD"),
			ShippingFee: int64(getEnvAsInt("SHIPPING_FEE", 150)),
		},
		Pages: PagesConfig{
			Login:        getEnv("LOGIN_PAGE", "/account"),
			Confirmation: getEnv("CONFIRMATION_PAGE", "/profile"),
			Detail:       getEnv("PRODUCT_DETAIL_PAGE", "/single-product"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", "data.json"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "catalog/"),
		},
		Breaker: BreakerConfig{
			MaxRequests:         uint32(getEnvAsInt("BREAKER_MAX_REQUESTS", 1)),
			Interval:            getEnvAsDuration("BREAKER_INTERVAL", time.Minute),
			Timeout:             getEnvAsDuration("BREAKER_TIMEOUT", 30*time.Second),
			ConsecutiveFailures: uint32(getEnvAsInt("BREAKER_CONSECUTIVE_FAILURES", 5)),
		},
		Session: SessionConfig{
			IdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Remote.Backend {
	case RemotePostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	case RemoteMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo URI is required")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo database is required")
		}
	case RemoteFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore project ID is required")
		}
	default:
		return fmt.Errorf("invalid remote backend: %s (must be postgres, mongo, or firestore)", c.Remote.Backend)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Redis.TTL < 0 {
		return fmt.Errorf("local cart TTL cannot be negative")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Store.Currency == "" {
		return fmt.Errorf("store currency is required")
	}

	if c.Store.ShippingFee < 0 {
		return fmt.Errorf("shipping fee cannot be negative")
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Breaker.ConsecutiveFailures < 1 {
		return fmt.Errorf("breaker consecutive failures must be at least 1")
	}

	if c.Session.IdleTimeout < 0 || (c.Session.IdleTimeout > 0 && c.Session.IdleTimeout < time.Second) {
		return fmt.Errorf("session idle timeout must be zero or at least 1s")
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration ("30s", "5m") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
