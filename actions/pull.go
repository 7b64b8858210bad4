package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/client"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// PullObservationsConfig configures pull_observations.
type PullObservationsConfig struct {
	// Endpoint is the positions resource path, relative to the API root.
	Endpoint string `json:"endpoint" default:"mobile/vehicles" validate:"required"`
	// MaxConcurrency bounds the sources processed at once.
	MaxConcurrency int `json:"max_concurrency" default:"4" validate:"min=1,max=64"`
	// SourcePerDevice keeps one checkpoint per device. When false a single
	// no-source checkpoint covers the whole fleet.
	SourcePerDevice bool `json:"source_per_device" default:"true"`
}

// pullUnit is the set of devices sharing one checkpoint.
type pullUnit struct {
	source  string
	devices []client.Device
}

type pullOutcome struct {
	extracted int
	err       error
}

func newPullObservations(d Deps) *action.Definition[PullObservationsConfig] {
	p := &puller{d: d}
	return action.NewDefinition(PullObservations, p.run,
		action.WithTimeout(d.PullTimeout),
		action.WithDescription("pull new device positions since each source's checkpoint"),
	)
}

type puller struct {
	d Deps
}

func (p *puller) run(ctx context.Context, inv *action.Invocation, cfg PullObservationsConfig) (action.Result, error) {
	devices, err := p.d.Provider.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("onyesha/actions: list devices: %w", err)
	}

	units := groupUnits(devices, cfg.SourcePerDevice)
	outcomes := make([]pullOutcome, len(units))

	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for i, u := range units {
		g.Go(func() error {
			n, err := p.pullUnit(ctx, inv, cfg, u)
			outcomes[i] = pullOutcome{extracted: n, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		total  int
		failed int
		errs   []error
	)
	for i, o := range outcomes {
		total += o.extracted
		if o.err != nil {
			failed++
			errs = append(errs, fmt.Errorf("source %s: %w", units[i].source, o.err))
		}
	}

	res := action.Result{
		"observations_extracted": total,
		"sources":                len(units),
		"failed_sources":         failed,
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("onyesha/actions: pull: %w", errors.Join(errs...))
	}
	return res, nil
}

// pullUnit fetches positions newer than the unit's checkpoint, forwards
// them and advances the checkpoint to the newest RecDateTime seen. On
// failure the checkpoint keeps its LastRun and records the error text. A
// defaulted LastRun is fetched from but never stored, so a quiet source
// keeps a lookback relative to each run.
func (p *puller) pullUnit(ctx context.Context, inv *action.Invocation, cfg PullObservationsConfig, u pullUnit) (int, error) {
	key := state.Key{IntegrationID: inv.IntegrationID, ActionID: PullObservations, SourceID: u.source}
	logger := p.d.Logger.With(
		slog.String("integration_id", inv.IntegrationID),
		slog.String("source", key.Source()),
		slog.String("run_id", inv.RunID.String()),
	)

	rec, stored, err := p.d.State.Lookup(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}
	since := rec.LastRun

	var lastRun time.Time
	if stored {
		lastRun = since
	}
	extracted := 0
	for _, dev := range u.devices {
		positions, err := p.d.Provider.PositionsFrom(ctx, cfg.Endpoint, dev.NDeviceID, since)
		if err != nil {
			return extracted, p.fail(ctx, logger, key, lastRun, fmt.Errorf("device %s: %w", dev.NDeviceID, err))
		}
		if len(positions) == 0 {
			continue
		}
		if err := p.d.Sink.Send(ctx, inv.IntegrationID, positions); err != nil {
			return extracted, p.fail(ctx, logger, key, lastRun, fmt.Errorf("device %s: send: %w", dev.NDeviceID, err))
		}
		extracted += len(positions)
		if t := latest(positions); t.After(lastRun) {
			lastRun = t
		}
	}

	if err := p.d.State.Set(ctx, key, state.Record{LastRun: lastRun}); err != nil {
		return extracted, fmt.Errorf("save checkpoint: %w", err)
	}
	logger.Debug("checkpoint advanced",
		slog.Time("last_run", lastRun),
		slog.Int("extracted", extracted),
	)
	return extracted, nil
}

// fail records cause on the checkpoint. A zero lastRun is stored as null.
func (p *puller) fail(ctx context.Context, logger *slog.Logger, key state.Key, lastRun time.Time, cause error) error {
	if err := p.d.State.Set(ctx, key, state.Record{LastRun: lastRun, Error: cause.Error()}); err != nil {
		logger.Error("failed to record pull error",
			slog.String("error", err.Error()),
			slog.String("cause", cause.Error()),
		)
	}
	return cause
}

func groupUnits(devices []client.Device, perDevice bool) []pullUnit {
	if !perDevice {
		return []pullUnit{{source: state.NoSource, devices: devices}}
	}
	units := make([]pullUnit, 0, len(devices))
	for _, dev := range devices {
		units = append(units, pullUnit{source: dev.NDeviceID, devices: []client.Device{dev}})
	}
	return units
}

// latest returns the newest RecDateTime in positions.
func latest(positions []client.Position) time.Time {
	var t time.Time
	for _, p := range positions {
		if p.RecDateTime.After(t) {
			t = p.RecDateTime.Time
		}
	}
	return t
}
