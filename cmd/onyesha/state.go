package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/actions"
	"github.com/PADAS/gundi-integration-onyesha/isotime"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// stateFlags address checkpoints.
type stateFlags struct {
	integrationID string
	actionID      string
	sources       []string
}

// keys returns one key per --source, or the no-source key.
func (f *stateFlags) keys(a *app) ([]state.Key, error) {
	integrationID := f.integrationID
	if integrationID == "" {
		integrationID = a.cfg.IntegrationID
	}
	if integrationID == "" {
		return nil, fmt.Errorf("%w: --integration or INTEGRATION_ID is required", onyesha.ErrInvalidConfig)
	}
	sources := f.sources
	if len(sources) == 0 {
		sources = []string{state.NoSource}
	}
	keys := make([]state.Key, 0, len(sources))
	for _, s := range sources {
		k := state.Key{IntegrationID: integrationID, ActionID: f.actionID, SourceID: s}
		if err := k.Validate(); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// checkpointView is how a checkpoint is printed.
type checkpointView struct {
	Key    string       `json:"key"`
	Record state.Record `json:"record"`
}

func newStateCmd(a *app) *cobra.Command {
	var f stateFlags
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and edit checkpoints",
		Long: `Read, write and delete the checkpoint records that bound each pull.

Keys have the form integration_state.<integration>.<action>.<source>; a
missing --source addresses the "no-source" checkpoint.

Examples:
  # Show the checkpoint of one device
  onyesha state get --integration org1 --source 150167

  # Re-pull the last day for a device
  onyesha state set --integration org1 --source 150167 --last-run "$(date -u -d yesterday +%FT%TZ)"

  # Forget every checkpoint of the integration
  onyesha state reset --integration org1 --all`,
	}
	cmd.PersistentFlags().StringVar(&f.integrationID, "integration", "", "integration id (defaults to INTEGRATION_ID)")
	cmd.PersistentFlags().StringVar(&f.actionID, "action", actions.PullObservations, "action id")
	cmd.PersistentFlags().StringSliceVar(&f.sources, "source", nil, "source id; repeat or comma-separate for several")

	cmd.AddCommand(newStateGetCmd(a, &f))
	cmd.AddCommand(newStateSetCmd(a, &f))
	cmd.AddCommand(newStateResetCmd(a, &f))
	cmd.AddCommand(newStateListCmd(a, &f))
	return cmd
}

func newStateGetCmd(a *app, f *stateFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print checkpoints as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := f.keys(a)
			if err != nil {
				return err
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			views := make([]checkpointView, 0, len(keys))
			for _, k := range keys {
				rec, err := eng.State().Get(cmd.Context(), k)
				if err != nil {
					return err
				}
				views = append(views, checkpointView{Key: k.String(), Record: rec})
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
}

func newStateSetCmd(a *app, f *stateFlags) *cobra.Command {
	var (
		lastRun string
		errText string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Overwrite checkpoints",
		Long: `Overwrite checkpoints with the given last run and error text. --last-run
accepts RFC 3339 and "YYYY-MM-DD HH:MM:SS[.ffffff][+HH:MM]"; values without
an offset are taken as UTC. An empty --last-run means now minus 7 days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := f.keys(a)
			if err != nil {
				return err
			}
			var at time.Time
			if lastRun != "" {
				if at, err = isotime.Parse(lastRun); err != nil {
					return fmt.Errorf("%w: --last-run: %v", onyesha.ErrInvalidConfig, err)
				}
			}
			rec := state.NewRecord(at, errText)

			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			views := make([]checkpointView, 0, len(keys))
			for _, k := range keys {
				if err := eng.State().Set(cmd.Context(), k, rec); err != nil {
					return err
				}
				views = append(views, checkpointView{Key: k.String(), Record: rec})
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().StringVar(&lastRun, "last-run", "", "end of the last processed window")
	cmd.Flags().StringVar(&errText, "error", "", "last failure text (empty marks success)")
	return cmd
}

func newStateResetCmd(a *app, f *stateFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := f.keys(a)
			if err != nil {
				return err
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if all {
				if keys, err = eng.State().List(cmd.Context(), keys[0].IntegrationID, keys[0].ActionID); err != nil {
					return err
				}
			}
			deleted := make([]string, 0, len(keys))
			for _, k := range keys {
				if err := eng.State().Delete(cmd.Context(), k); err != nil {
					return err
				}
				deleted = append(deleted, k.String())
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"reset": deleted})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every source of the action")
	return cmd
}

func newStateListCmd(a *app, f *stateFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every checkpoint of an action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := f.keys(a)
			if err != nil {
				return err
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			found, err := eng.State().List(cmd.Context(), keys[0].IntegrationID, keys[0].ActionID)
			if err != nil {
				return err
			}
			views := make([]checkpointView, 0, len(found))
			for _, k := range found {
				rec, err := eng.State().Get(cmd.Context(), k)
				if err != nil {
					return err
				}
				views = append(views, checkpointView{Key: k.String(), Record: rec})
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
}
