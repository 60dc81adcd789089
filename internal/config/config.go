package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Backend       BackendConfig       `envconfig:"BACKEND"`
	Session       SessionConfig       `envconfig:"SESSION"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

// BackendConfig describes the remote flight booking API. The gateway keeps no
// business state of its own; every fare, seat and PNR decision happens there.
type BackendConfig struct {
	BaseURL      string        `envconfig:"BASE_URL" default:"http://localhost:9000"`
	LoginTimeout time.Duration `envconfig:"LOGIN_TIMEOUT" default:"30s"`
	ListTimeout  time.Duration `envconfig:"LIST_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	// Backend selects the session slot storage: memory, file or redis.
	Backend    string `envconfig:"BACKEND" default:"memory"`
	FilePath   string `envconfig:"FILE_PATH" default:"sessions.json"`
	CookieName string `envconfig:"COOKIE_NAME" default:"session_ctx"`
	// IdleTTL bounds how long an untouched session context stays resident
	// in memory. The durable record outlives it.
	IdleTTL time.Duration `envconfig:"IDLE_TTL" default:"30m"`
}

type RedisConfig struct {
	Address     string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password    string        `envconfig:"PASSWORD" default:""`
	Database    int           `envconfig:"DATABASE" default:"0"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize    int           `envconfig:"POOL_SIZE" default:"100"`
	PoolTimeout time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled  bool          `envconfig:"TLS_ENABLED" default:"false"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	switch cfg.Session.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid session backend: %s", cfg.Session.Backend)
	}

	if cfg.Session.IdleTTL <= 0 {
		return fmt.Errorf("session idle TTL must be positive")
	}

	if cfg.Backend.LoginTimeout <= 0 || cfg.Backend.ListTimeout <= 0 {
		return fmt.Errorf("backend timeouts must be positive")
	}

	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	return nil
}
