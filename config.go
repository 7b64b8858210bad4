package onyesha

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the connector process configuration. Every field maps to an
// environment variable of the same name in upper case (koanf tag).
type Config struct {
	// RedisHost, RedisPort and RedisStateDB address the checkpoint backend.
	RedisHost     string `koanf:"redis_host" default:"localhost" validate:"required,hostname_rfc1123|ip"`
	RedisPort     int    `koanf:"redis_port" default:"6379" validate:"min=1,max=65535"`
	RedisStateDB  int    `koanf:"redis_state_db" default:"0" validate:"min=0,max=15"`
	RedisPassword Secret `koanf:"redis_password"`

	// StateRetryAttempts is the total number of attempts per state
	// operation, including the first one.
	StateRetryAttempts int           `koanf:"state_retry_attempts" default:"5" validate:"min=1"`
	StateRetryInitial  time.Duration `koanf:"state_retry_initial" default:"1s" validate:"min=0"`
	StateRetryMax      time.Duration `koanf:"state_retry_max" default:"30s" validate:"gtefield=StateRetryInitial"`
	StateRetryJitter   time.Duration `koanf:"state_retry_jitter" default:"3s" validate:"min=0"`

	// Onyesha API access.
	OnyeshaBaseURL        string        `koanf:"onyesha_base_url" default:"https://api.onyesha.com" validate:"required,url"`
	OnyeshaUsername       string        `koanf:"onyesha_username"`
	OnyeshaPassword       Secret        `koanf:"onyesha_password"`
	OnyeshaConnectTimeout time.Duration `koanf:"onyesha_connect_timeout" default:"3100ms" validate:"min=0"`
	OnyeshaReadTimeout    time.Duration `koanf:"onyesha_read_timeout" default:"20s" validate:"min=0"`
	OnyeshaRateLimit      float64       `koanf:"onyesha_rate_limit" default:"5" validate:"min=0"`
	OnyeshaRateBurst      int           `koanf:"onyesha_rate_burst" default:"1" validate:"min=1"`

	// IntegrationID identifies the Gundi integration served by "serve".
	IntegrationID string        `koanf:"integration_id"`
	PullSchedule  string        `koanf:"pull_schedule" default:"@every 5m" validate:"required"`
	PullTimeout   time.Duration `koanf:"pull_timeout" default:"10m" validate:"min=0"`

	LogLevel  string `koanf:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" default:"json" validate:"oneof=json text"`

	// OTelEndpoint enables OTLP/HTTP export of traces and metrics when set.
	OTelEndpoint string `koanf:"otel_exporter_otlp_endpoint"`
	ServiceName  string `koanf:"otel_service_name" default:"gundi-integration-onyesha"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		// Only reachable through a malformed default tag.
		panic(fmt.Sprintf("onyesha: config defaults: %v", err))
	}
	return cfg
}

// LoadConfig reads a .env file when present, then the process environment,
// on top of DefaultConfig, and validates the result.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: load .env: %v", ErrInvalidConfig, err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("%w: load environment: %v", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RedisAddr returns the host:port address of the state backend.
func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// SlogLevel maps LogLevel to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Secret is a string that never prints its value.
type Secret string

const redacted = "********"

// String implements fmt.Stringer.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v is redacted too.
func (s Secret) GoString() string { return s.String() }

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value { return slog.StringValue(s.String()) }

// MarshalText redacts the value when encoded.
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Reveal returns the plain value.
func (s Secret) Reveal() string { return string(s) }
