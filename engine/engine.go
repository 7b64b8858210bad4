package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/actions"
	"github.com/PADAS/gundi-integration-onyesha/backoff"
	"github.com/PADAS/gundi-integration-onyesha/client"
	"github.com/PADAS/gundi-integration-onyesha/cron"
	"github.com/PADAS/gundi-integration-onyesha/ext"
	"github.com/PADAS/gundi-integration-onyesha/id"
	mw "github.com/PADAS/gundi-integration-onyesha/middleware"
	"github.com/PADAS/gundi-integration-onyesha/observability"
	"github.com/PADAS/gundi-integration-onyesha/retry"
	"github.com/PADAS/gundi-integration-onyesha/state"
	"github.com/PADAS/gundi-integration-onyesha/store"
	redisstore "github.com/PADAS/gundi-integration-onyesha/store/redis"
)

const instrumentationName = "github.com/PADAS/gundi-integration-onyesha"

// Engine is the long-lived connector handle.
type Engine struct {
	cfg        onyesha.Config
	logger     *slog.Logger
	extensions *ext.Registry
	registry   *action.Registry
	mws        []mw.Middleware
	chain      mw.Middleware

	rdb     *goredis.Client
	backend store.Store
	state   *state.Store

	provider    actions.Provider
	newProvider actions.ProviderFunc
	sink        actions.Sink
	clock       func() time.Time

	scheduler *cron.Scheduler

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by every subsystem.
func WithLogger(l *slog.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.extensions.Register(e) }
}

// WithMiddleware adds middleware to the engine's chain, inside the
// defaults.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m) }
}

// WithStore replaces the Redis backend built from the configuration.
// The engine does not close a store passed this way.
func WithStore(s store.Store) Option {
	return func(eng *Engine) { eng.backend = s }
}

// WithProvider replaces the Onyesha API client built from the
// configuration, e.g. with client.NewFixture().
func WithProvider(p actions.Provider) Option {
	return func(eng *Engine) { eng.provider = p }
}

// WithProviderFunc sets how the auth action builds a provider for
// explicit credentials.
func WithProviderFunc(f actions.ProviderFunc) Option {
	return func(eng *Engine) { eng.newProvider = f }
}

// WithSink sets where pulled positions are delivered. Defaults to
// actions.LogSink.
func WithSink(s actions.Sink) Option {
	return func(eng *Engine) { eng.sink = s }
}

// WithClock sets the time source of the checkpoint store.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) { eng.clock = now }
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// The metrics middleware, the observability extension and the checkpoint
// store all use it. If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// New builds an Engine from cfg.
func New(cfg onyesha.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng := &Engine{
		cfg:        cfg,
		logger:     slog.Default(),
		extensions: ext.NewRegistry(slog.Default()),
		registry:   action.NewRegistry(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	logger := eng.logger
	eng.extensions.SetLogger(logger)

	if eng.backend == nil {
		eng.rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword.Reveal(),
			DB:       cfg.RedisStateDB,
			// The checkpoint store owns the retry policy.
			MaxRetries: -1,
		})
		eng.backend = redisstore.New(eng.rdb, redisstore.WithLogger(logger))
	}

	stateOpts := []state.Option{
		state.WithLogger(logger),
		state.WithPolicy(retry.Policy{
			Attempts:  cfg.StateRetryAttempts,
			Backoff:   backoff.NewExponentialJitter(cfg.StateRetryInitial, cfg.StateRetryMax, cfg.StateRetryJitter),
			Retryable: state.IsTransient,
		}),
	}
	if eng.clock != nil {
		stateOpts = append(stateOpts, state.WithClock(eng.clock))
	}
	if eng.meterProvider != nil {
		stateOpts = append(stateOpts, state.WithMeterProvider(eng.meterProvider))
	}
	eng.state = state.New(eng.backend, stateOpts...)

	if eng.provider == nil {
		c, err := eng.newClient(cfg.OnyeshaUsername, cfg.OnyeshaPassword.Reveal())
		if err != nil {
			_ = eng.closeOwned()
			return nil, err
		}
		eng.provider = c
		if eng.newProvider == nil {
			eng.newProvider = func(username, password string) (actions.Provider, error) {
				return eng.newClient(username, password)
			}
		}
	}

	if err := actions.Register(eng.registry, actions.Deps{
		State:       eng.state,
		Provider:    eng.provider,
		NewProvider: eng.newProvider,
		Sink:        eng.sink,
		Logger:      logger,
		PullTimeout: cfg.PullTimeout,
	}); err != nil {
		_ = eng.closeOwned()
		return nil, err
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer(instrumentationName))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware and the observability extension (custom
	// provider or global).
	var (
		metricsMw mw.Middleware
		obsExt    *observability.MetricsExtension
	)
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter(instrumentationName))
		obsExt = observability.NewMetricsExtensionWithMeter(eng.meterProvider.Meter(instrumentationName + "/observability"))
	} else {
		metricsMw = mw.Metrics()
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	// Default middleware stack: recover → tracing → metrics → logging → scope → timeout.
	allMws := []mw.Middleware{
		mw.Recover(logger),
		tracingMw,
		metricsMw,
		mw.Logging(logger),
		mw.Scope(),
		mw.Timeout(logger),
	}
	allMws = append(allMws, eng.mws...)
	eng.chain = mw.Chain(allMws...)

	lockTTL := cfg.PullTimeout + time.Minute
	if cfg.PullTimeout <= 0 {
		lockTTL = time.Hour
	}
	eng.scheduler = cron.NewScheduler(
		func(ctx context.Context, inv *action.Invocation) error {
			_, err := eng.Run(ctx, inv)
			return err
		},
		logger,
		cron.WithEmitter(eng.extensions),
		cron.WithLocker(eng.backend),
		cron.WithLockTTL(lockTTL),
	)
	if cfg.IntegrationID != "" {
		if err := eng.scheduler.Add(cron.Entry{
			Name:          actions.PullObservations + "." + cfg.IntegrationID,
			Schedule:      cfg.PullSchedule,
			IntegrationID: cfg.IntegrationID,
			ActionID:      actions.PullObservations,
		}); err != nil {
			_ = eng.closeOwned()
			return nil, err
		}
	}

	return eng, nil
}

func (eng *Engine) newClient(username, password string) (*client.Client, error) {
	return client.New(eng.cfg.OnyeshaBaseURL,
		client.WithCredentials(username, password),
		client.WithLogger(eng.logger),
		client.WithTimeouts(eng.cfg.OnyeshaConnectTimeout, eng.cfg.OnyeshaReadTimeout),
		client.WithRateLimit(eng.cfg.OnyeshaRateLimit, eng.cfg.OnyeshaRateBurst),
	)
}

// Execute runs actionID for integrationID with a JSON configuration under a
// fresh run ID. A nil or empty config selects the action's defaults.
func (eng *Engine) Execute(ctx context.Context, integrationID, actionID string, config json.RawMessage) (action.Result, error) {
	return eng.Run(ctx, &action.Invocation{
		RunID:         id.NewRunID(),
		IntegrationID: integrationID,
		ActionID:      actionID,
		Config:        config,
	})
}

// Run executes inv through the middleware chain and emits lifecycle hooks.
// A zero Timeout takes the action's registered timeout.
func (eng *Engine) Run(ctx context.Context, inv *action.Invocation) (action.Result, error) {
	if inv.IntegrationID == "" {
		return nil, fmt.Errorf("%w: integration id is required", onyesha.ErrInvalidConfig)
	}
	h, ok := eng.registry.Get(inv.ActionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", onyesha.ErrActionNotFound, inv.ActionID)
	}
	if inv.RunID.IsNil() {
		inv.RunID = id.NewRunID()
	}
	if inv.Timeout == 0 {
		if o, ok := eng.registry.Options(inv.ActionID); ok {
			inv.Timeout = o.Timeout
		}
	}
	if inv.StartedAt.IsZero() {
		inv.StartedAt = time.Now().UTC()
	}

	eng.extensions.EmitActionStarted(ctx, inv)

	var res action.Result
	start := time.Now()
	err := eng.chain(ctx, inv, func(ctx context.Context) error {
		var herr error
		res, herr = h(ctx, inv)
		return herr
	})
	if err != nil {
		eng.extensions.EmitActionFailed(ctx, inv, err)
		return res, err
	}

	eng.extensions.EmitActionCompleted(ctx, inv, res, time.Since(start))
	return res, nil
}

// Start pings the backend and starts the scheduler.
func (eng *Engine) Start(ctx context.Context) error {
	if err := eng.backend.Ping(ctx); err != nil {
		return fmt.Errorf("onyesha/engine: ping state backend: %w", err)
	}
	if err := eng.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("onyesha/engine: start scheduler: %w", err)
	}
	return nil
}

// Stop stops the scheduler, waiting for in-flight runs until ctx ends,
// and emits the Shutdown hook.
func (eng *Engine) Stop(ctx context.Context) error {
	err := eng.scheduler.Stop(ctx)
	if err != nil {
		eng.logger.Error("cron scheduler stop error", slog.String("error", err.Error()))
	}
	eng.extensions.EmitShutdown(ctx)
	return err
}

// Close releases the Redis client when the engine created it.
func (eng *Engine) Close() error {
	return eng.closeOwned()
}

func (eng *Engine) closeOwned() error {
	if eng.rdb == nil {
		return nil
	}
	err := eng.rdb.Close()
	eng.rdb = nil
	if err != nil && !errors.Is(err, goredis.ErrClosed) {
		return fmt.Errorf("onyesha/engine: close redis: %w", err)
	}
	return nil
}

// Config returns the configuration the engine was built from.
func (eng *Engine) Config() onyesha.Config { return eng.cfg }

// State returns the checkpoint store.
func (eng *Engine) State() *state.Store { return eng.state }

// Store returns the backend behind the checkpoint store.
func (eng *Engine) Store() store.Store { return eng.backend }

// Registry returns the action registry.
func (eng *Engine) Registry() *action.Registry { return eng.registry }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Scheduler returns the cron scheduler.
func (eng *Engine) Scheduler() *cron.Scheduler { return eng.scheduler }
