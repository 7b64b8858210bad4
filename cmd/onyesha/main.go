// Package main implements the onyesha CLI: the long-running connector
// process and manual operations against the checkpoint store.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/engine"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every command shares. Tests replace loadConfig and add
// engine options.
type app struct {
	loadConfig func() (onyesha.Config, error)
	engineOpts []engine.Option

	cfg    onyesha.Config
	logger *slog.Logger

	logLevel  string
	logFormat string
}

func newApp() *app {
	return &app{loadConfig: onyesha.LoadConfig}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "onyesha",
		Short: "Gundi connector for the Onyesha tracking API",
		Long: `onyesha pulls devices and positions from the Onyesha tracking API and keeps
a per-source checkpoint in Redis so repeated polling only fetches new data.

Configuration is read from the environment and an optional .env file
(REDIS_HOST, REDIS_PORT, REDIS_STATE_DB, ONYESHA_BASE_URL, ONYESHA_USERNAME,
ONYESHA_PASSWORD, INTEGRATION_ID, PULL_SCHEDULE, ...).`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "override LOG_FORMAT (json, text)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPullCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newStateCmd(a))
	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup(logOut io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(logOut, cfg)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, cfg onyesha.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newEngine builds an engine from the loaded configuration.
func (a *app) newEngine(extra ...engine.Option) (*engine.Engine, error) {
	opts := []engine.Option{engine.WithLogger(a.logger)}
	opts = append(opts, a.engineOpts...)
	opts = append(opts, extra...)
	eng, err := engine.New(a.cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return eng, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
