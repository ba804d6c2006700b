package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	SessionBackendMemory   = "memory"
	SessionBackendFile     = "file"
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"

	ExpiryScopeAll  = "all"
	ExpiryScopeRole = "role"
)

type Config struct {
	ServerPort              string        `env:"SERVER_PORT, default=8080"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT, default=15s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT, default=30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT, default=120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT, default=30s"`

	APIBaseURL string        `env:"API_BASE_URL, default=http://localhost:3000"`
	APITimeout time.Duration `env:"API_TIMEOUT, default=30s"`

	SessionBackend     string `env:"SESSION_BACKEND, default=file"`
	SessionFile        string `env:"SESSION_FILE, default=./state/sessions.json"`
	SessionSecret      string `env:"SESSION_SECRET"`
	SessionExpiryScope string `env:"SESSION_EXPIRY_SCOPE, default=all"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS, default=4"`
	DBMinConns  int32  `env:"DB_MIN_CONNS, default=1"`

	RedisAddr   string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB     int    `env:"REDIS_DB, default=0"`
	RedisPrefix string `env:"REDIS_PREFIX, default=portal:"`

	CORSOrigins         []string `env:"CORS_ORIGINS, default=*"`
	RateLimitRPM        int      `env:"RATE_LIMIT_RPM, default=300"`
	SessionRateLimitRPM int      `env:"SESSION_RATE_LIMIT_RPM, default=20"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=pretty"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	cfg.SessionExpiryScope = strings.ToLower(strings.TrimSpace(cfg.SessionExpiryScope))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL")
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendFile:
		if strings.TrimSpace(c.SessionFile) == "" {
			return fmt.Errorf("SESSION_FILE cannot be empty")
		}
	case SessionBackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres session backend")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS are inconsistent")
		}
	case SessionBackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of memory, file, postgres, redis")
	}

	if c.SessionExpiryScope != ExpiryScopeAll && c.SessionExpiryScope != ExpiryScopeRole {
		return fmt.Errorf("SESSION_EXPIRY_SCOPE must be %q or %q", ExpiryScopeAll, ExpiryScopeRole)
	}

	return nil
}
