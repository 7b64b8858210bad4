package action

import (
	"encoding/json"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/id"
)

// Invocation is one execution of an action for an integration.
type Invocation struct {
	RunID         id.ID           `json:"run_id"`
	IntegrationID string          `json:"integration_id"`
	ActionID      string          `json:"action_id"`
	Config        json.RawMessage `json:"config,omitempty"`
	Timeout       time.Duration   `json:"timeout,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
}

// Result is the JSON-serializable outcome an action reports.
type Result map[string]any
