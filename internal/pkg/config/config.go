package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	API     APIConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points at the upstream GymPulse REST API.
type APIConfig struct {
	BaseURL       string        `env:"API_BASE_URL,    default=http://localhost:5000/api"`
	Timeout       time.Duration `env:"API_TIMEOUT,     default=10s"`
	OAuthLoginURL string        `env:"OAUTH_LOGIN_URL"`
}

type SessionConfig struct {
	TokenStore        string        `env:"TOKEN_STORE,          default=redis"`
	TokenTTL          time.Duration `env:"TOKEN_TTL,            default=168h"`
	CookieName        string        `env:"SESSION_COOKIE,       default=gympulse_sid"`
	IdleTTL           time.Duration `env:"SESSION_IDLE_TTL,     default=30m"`
	MaxSessions       int           `env:"SESSION_MAX,          default=10000"`
	ResolveWait       time.Duration `env:"RESOLVE_WAIT,         default=5s"`
	CookieSecure      bool          `env:"COOKIE_SECURE,        default=false"`
	CSRFKey           string        `env:"CSRF_KEY"`
	LoginMaxPerMin    int           `env:"LOGIN_MAX_PER_MINUTE, default=10"`
	ActivityRetention time.Duration `env:"ACTIVITY_RETENTION,   default=720h"`
}

// MongoConfig is optional: an empty URI disables the activity audit store.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=gympulse_gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether the gateway runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// OAuthURL is where the external login flow starts.
func (c *Config) OAuthURL() string {
	if c.API.OAuthLoginURL != "" {
		return c.API.OAuthLoginURL
	}
	return strings.TrimSuffix(c.API.BaseURL, "/") + "/auth/google"
}

// Validate rejects combinations the gateway cannot run with.
func (c *Config) Validate() error {
	switch c.Session.TokenStore {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("config: TOKEN_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, c.Session.TokenStore)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL is required")
	}
	if c.Session.CSRFKey != "" && len(c.Session.CSRFKey) != 32 {
		return fmt.Errorf("config: CSRF_KEY must be 32 bytes")
	}
	if c.Session.ResolveWait <= 0 {
		return fmt.Errorf("config: RESOLVE_WAIT must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("config: SESSION_MAX must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
