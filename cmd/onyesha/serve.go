package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	audithook "github.com/PADAS/gundi-integration-onyesha/audit_hook"
	"github.com/PADAS/gundi-integration-onyesha/engine"
	"github.com/PADAS/gundi-integration-onyesha/observability"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		runNow       bool
		audit        bool
		stopTimeout  time.Duration
		otelInterval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled pulls until interrupted",
		Long: `Run pull_observations for INTEGRATION_ID on PULL_SCHEDULE until SIGINT or
SIGTERM. In-flight runs get --stop-timeout to finish on shutdown.

Examples:
  # Poll every five minutes (the default schedule)
  INTEGRATION_ID=org1 onyesha serve

  # Pull once right away, then follow the schedule
  INTEGRATION_ID=org1 PULL_SCHEDULE="*/10 * * * *" onyesha serve --run-now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.IntegrationID == "" {
				return fmt.Errorf("%w: INTEGRATION_ID is required to serve", onyesha.ErrInvalidConfig)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, runNow, audit, stopTimeout, otelInterval)
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "fire every entry once at startup")
	cmd.Flags().BoolVar(&audit, "audit", true, "log an audit event for every run and schedule firing")
	cmd.Flags().DurationVar(&stopTimeout, "stop-timeout", 30*time.Second, "how long shutdown waits for in-flight runs")
	cmd.Flags().DurationVar(&otelInterval, "otel-export-interval", time.Minute, "metric export interval when OTEL_EXPORTER_OTLP_ENDPOINT is set")
	return cmd
}

func (a *app) serve(ctx context.Context, runNow, audit bool, stopTimeout, otelInterval time.Duration) error {
	providers, err := observability.NewProviders(ctx, observability.ProviderConfig{
		Endpoint:       a.cfg.OTelEndpoint,
		ServiceName:    a.cfg.ServiceName,
		ServiceVersion: version,
		ExportInterval: otelInterval,
	})
	if err != nil {
		return err
	}
	providers.Install()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	opts := []engine.Option{
		engine.WithTracerProvider(providers.TracerProvider),
		engine.WithMeterProvider(providers.MeterProvider),
	}
	if audit {
		opts = append(opts, engine.WithExtension(audithook.New(audithook.NewLogRecorder(a.logger))))
	}
	eng, err := a.newEngine(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if err := eng.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("onyesha connector serving",
		slog.String("integration_id", a.cfg.IntegrationID),
		slog.String("schedule", a.cfg.PullSchedule),
	)

	if runNow {
		for _, e := range eng.Scheduler().Entries() {
			if err := eng.Scheduler().RunNow(ctx, e.Name); err != nil && !errors.Is(err, onyesha.ErrScheduleLocked) {
				a.logger.Warn("startup run failed", slog.String("entry", e.Name), slog.String("error", err.Error()))
			}
		}
	}

	<-ctx.Done()
	a.logger.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	return eng.Stop(stopCtx)
}
