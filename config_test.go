package onyesha_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
)

func TestDefaultConfig(t *testing.T) {
	cfg := onyesha.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}

	if cfg.RedisAddr() != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr())
	}
	if cfg.RedisStateDB != 0 {
		t.Errorf("RedisStateDB = %d, want 0", cfg.RedisStateDB)
	}
	if cfg.StateRetryAttempts != 5 || cfg.StateRetryInitial != time.Second ||
		cfg.StateRetryMax != 30*time.Second || cfg.StateRetryJitter != 3*time.Second {
		t.Errorf("retry defaults = %d/%v/%v/%v", cfg.StateRetryAttempts, cfg.StateRetryInitial, cfg.StateRetryMax, cfg.StateRetryJitter)
	}
	if cfg.OnyeshaConnectTimeout != 3100*time.Millisecond || cfg.OnyeshaReadTimeout != 20*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.OnyeshaConnectTimeout, cfg.OnyeshaReadTimeout)
	}
	if cfg.PullSchedule != "@every 5m" {
		t.Errorf("PullSchedule = %q", cfg.PullSchedule)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_STATE_DB", "3")
	t.Setenv("STATE_RETRY_MAX", "45s")
	t.Setenv("ONYESHA_USERNAME", "ranger")
	t.Setenv("ONYESHA_PASSWORD", "s3cret")
	t.Setenv("INTEGRATION_ID", "org1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := onyesha.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RedisAddr() != "redis.internal:6380" || cfg.RedisStateDB != 3 {
		t.Errorf("redis = %s db %d", cfg.RedisAddr(), cfg.RedisStateDB)
	}
	if cfg.StateRetryMax != 45*time.Second {
		t.Errorf("StateRetryMax = %v", cfg.StateRetryMax)
	}
	if cfg.OnyeshaUsername != "ranger" || cfg.OnyeshaPassword.Reveal() != "s3cret" {
		t.Errorf("credentials = %q/%q", cfg.OnyeshaUsername, cfg.OnyeshaPassword.Reveal())
	}
	if cfg.IntegrationID != "org1" || cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("integration %q level %v", cfg.IntegrationID, cfg.SlogLevel())
	}
	// Unset variables keep their defaults.
	if cfg.StateRetryAttempts != 5 {
		t.Errorf("StateRetryAttempts = %d, want default 5", cfg.StateRetryAttempts)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"log level", "LOG_LEVEL", "chatty"},
		{"port", "REDIS_PORT", "70000"},
		{"db index", "REDIS_STATE_DB", "16"},
		{"base url", "ONYESHA_BASE_URL", "not a url"},
		{"retry cap below initial", "STATE_RETRY_MAX", "1ms"},
		{"not a number", "REDIS_PORT", "six"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := onyesha.LoadConfig(); !errors.Is(err, onyesha.ErrInvalidConfig) {
				t.Errorf("LoadConfig = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSecret_Redacts(t *testing.T) {
	s := onyesha.Secret("hunter2")

	for _, got := range []string{
		fmt.Sprintf("%v", s),
		fmt.Sprintf("%s", s),
		fmt.Sprintf("%#v", s),
		s.String(),
	} {
		if strings.Contains(got, "hunter2") {
			t.Errorf("formatted secret leaked: %q", got)
		}
	}

	data, err := json.Marshal(struct{ P onyesha.Secret }{s})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Errorf("json leaked: %s", data)
	}

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("login", slog.Any("password", s))
	if strings.Contains(buf.String(), "hunter2") {
		t.Errorf("log leaked: %s", buf.String())
	}

	if s.Reveal() != "hunter2" {
		t.Errorf("Reveal = %q", s.Reveal())
	}
	if onyesha.Secret("").String() != "" {
		t.Error("empty secret should print empty")
	}
}
