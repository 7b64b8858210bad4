package cron

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
)

// Entry is a recurring action execution.
type Entry struct {
	// Name identifies the entry within the scheduler and in locks.
	Name string `json:"name"`
	// Schedule is a 5-field cron expression or a descriptor like "@every 5m".
	Schedule string `json:"schedule"`

	IntegrationID string          `json:"integration_id"`
	ActionID      string          `json:"action_id"`
	Config        json.RawMessage `json:"config,omitempty"`
}

// Validate checks that the entry can be scheduled.
func (e Entry) Validate() error {
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: cron entry name is required", onyesha.ErrInvalidConfig)
	case strings.TrimSpace(e.Schedule) == "":
		return fmt.Errorf("%w: cron entry %q has no schedule", onyesha.ErrInvalidConfig, e.Name)
	case e.IntegrationID == "" || e.ActionID == "":
		return fmt.Errorf("%w: cron entry %q needs integration and action ids", onyesha.ErrInvalidConfig, e.Name)
	}
	if _, err := ParseSchedule(e.Schedule); err != nil {
		return fmt.Errorf("%w: cron entry %q: %v", onyesha.ErrInvalidConfig, e.Name, err)
	}
	return nil
}

// Status reports when an entry last ran and when it runs next.
type Status struct {
	Name string    `json:"name"`
	Prev time.Time `json:"prev,omitempty"`
	Next time.Time `json:"next"`
}
