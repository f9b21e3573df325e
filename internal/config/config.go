// Package config loads service configuration from a .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/5w1tchy/bookshelf-api/internal/validate"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Snapshot  SnapshotConfig
}

type AppConfig struct {
	Environment    string `env:"APP_ENV" validate:"oneof=development staging production test"`
	StrictSecurity bool   `env:"STRICT_SECURITY"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `env:"LOG_FORMAT" validate:"omitempty,oneof=json text"`
}

type ServerConfig struct {
	Port           string        `env:"PORT" validate:"required,numeric"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0"`
	MaxBodyBytes   int64         `env:"MAX_BODY_SIZE" validate:"gt=0"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS"`
	TLSCert        string        `env:"TLS_CERT_FILE" validate:"required_with=TLSKey"`
	TLSKey         string        `env:"TLS_KEY_FILE" validate:"required_with=TLSCert"`
}

// TLS reports whether both certificate and key are configured.
func (s ServerConfig) TLS() bool { return s.TLSCert != "" && s.TLSKey != "" }

type StoreConfig struct {
	Driver      string `env:"BOOKS_STORE" validate:"oneof=memory postgres"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=Driver postgres"`
}

// RedisConfig is optional. Either URL or Addr enables rate limiting.
type RedisConfig struct {
	URL      string `env:"REDIS_URL" validate:"omitempty,url"`
	Addr     string `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	User     string `env:"REDIS_USER"`
	Password string `env:"REDIS_PASSWORD"`
	TLS      bool   `env:"REDIS_TLS"`
}

func (r RedisConfig) Enabled() bool { return r.URL != "" || r.Addr != "" }

type RateLimitConfig struct {
	TokenRate   float64       `env:"RATE_LIMIT_TOKEN_RATE" validate:"gt=0"`
	TokenBurst  int           `env:"RATE_LIMIT_TOKEN_BURST" validate:"gt=0"`
	WindowLimit int           `env:"RATE_LIMIT_WINDOW_LIMIT" validate:"gt=0"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" validate:"gt=0"`
}

// SnapshotConfig is optional. An empty Bucket disables snapshot export.
type SnapshotConfig struct {
	Bucket          string        `env:"SNAPSHOT_BUCKET"`
	Prefix          string        `env:"SNAPSHOT_PREFIX"`
	Interval        time.Duration `env:"SNAPSHOT_INTERVAL" validate:"gte=0"`
	Keep            int           `env:"SNAPSHOT_KEEP" validate:"gte=0"`
	Region          string        `env:"AWS_REGION" validate:"required_with=Bucket"`
	Endpoint        string        `env:"SNAPSHOT_ENDPOINT" validate:"omitempty,url"`
	PathStyle       bool          `env:"SNAPSHOT_PATH_STYLE"`
	AccessKeyID     string        `env:"AWS_ACCESS_KEY_ID" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY" validate:"required_with=AccessKeyID"`
}

func (s SnapshotConfig) Enabled() bool { return s.Bucket != "" }

// Load reads envFile (a missing file is not an error) and then builds the
// configuration from the environment. Variables already set in the
// environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	e := envReader{get: getenv}

	cfg := &Config{
		App: AppConfig{
			Environment:    strings.ToLower(e.str("APP_ENV", "development")),
			StrictSecurity: e.bool("STRICT_SECURITY", false),
		},
		Log: LogConfig{
			Level:  strings.ToLower(e.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(e.str("LOG_FORMAT", "")),
		},
		Server: ServerConfig{
			Port:           e.str("PORT", "9000"),
			ReadTimeout:    e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   e.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    e.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxBodyBytes:   e.int64("MAX_BODY_SIZE", 1<<20),
			AllowedOrigins: e.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
			TLSCert:        e.str("TLS_CERT_FILE", ""),
			TLSKey:         e.str("TLS_KEY_FILE", ""),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(e.str("BOOKS_STORE", StoreMemory)),
			DatabaseURL: e.str("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:      e.str("REDIS_URL", ""),
			Addr:     e.str("REDIS_ADDR", ""),
			User:     e.str("REDIS_USER", ""),
			Password: e.str("REDIS_PASSWORD", ""),
			TLS:      e.bool("REDIS_TLS", false),
		},
		RateLimit: RateLimitConfig{
			TokenRate:   e.float("RATE_LIMIT_TOKEN_RATE", 5),
			TokenBurst:  int(e.int64("RATE_LIMIT_TOKEN_BURST", 20)),
			WindowLimit: int(e.int64("RATE_LIMIT_WINDOW_LIMIT", 3000)),
			Window:      e.duration("RATE_LIMIT_WINDOW", time.Hour),
		},
		Snapshot: SnapshotConfig{
			Bucket:          e.str("SNAPSHOT_BUCKET", ""),
			Prefix:          e.str("SNAPSHOT_PREFIX", "snapshots/"),
			Interval:        e.duration("SNAPSHOT_INTERVAL", 15*time.Minute),
			Keep:            int(e.int64("SNAPSHOT_KEEP", 10)),
			Region:          e.str("AWS_REGION", "us-east-1"),
			Endpoint:        e.str("SNAPSHOT_ENDPOINT", ""),
			PathStyle:       e.bool("SNAPSHOT_PATH_STYLE", false),
			AccessKeyID:     e.str("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: e.str("AWS_SECRET_ACCESS_KEY", ""),
		},
	}
	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}

	v := validate.New()
	for _, section := range []any{cfg.App, cfg.Log, cfg.Server, cfg.Store, cfg.Redis, cfg.RateLimit, cfg.Snapshot} {
		if err := v.Struct(section); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

// Warnings returns non-fatal configuration issues worth logging on startup.
func (c *Config) Warnings() []string {
	var warns []string

	if c.Server.WriteTimeout < c.Server.ReadTimeout {
		warns = append(warns, fmt.Sprintf("SERVER_WRITE_TIMEOUT=%s is shorter than SERVER_READ_TIMEOUT=%s", c.Server.WriteTimeout, c.Server.ReadTimeout))
	}
	if c.Snapshot.Enabled() && c.Store.Driver == StorePostgres {
		warns = append(warns, "SNAPSHOT_BUCKET is set with the postgres store; snapshots duplicate data that is already durable")
	}

	if !c.IsProduction() {
		return warns
	}
	if !c.Redis.Enabled() {
		warns = append(warns, "no REDIS_URL/REDIS_ADDR configured; rate limiting is disabled")
	}
	if strings.HasPrefix(c.Redis.URL, "redis://") {
		warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
	}
	if c.Redis.Addr != "" && (c.Redis.User == "" || c.Redis.Password == "") {
		warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
	}
	if c.Redis.Addr != "" && !c.Redis.TLS {
		warns = append(warns, "REDIS_ADDR used without REDIS_TLS; traffic to redis is unencrypted")
	}
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			warns = append(warns, "CORS_ALLOWED_ORIGINS allows any origin")
			break
		}
	}
	if !c.Server.TLS() {
		warns = append(warns, "TLS_CERT_FILE/TLS_KEY_FILE not set; serving plain HTTP")
	}
	if c.Store.Driver == StoreMemory && !c.Snapshot.Enabled() {
		warns = append(warns, "memory store without SNAPSHOT_BUCKET; all books are lost on restart")
	}
	return warns
}

type envReader struct {
	get  func(string) string
	errs []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) bool(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (e *envReader) int64(key string, def int64) int64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (e *envReader) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (e *envReader) list(key string, def []string) []string {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
