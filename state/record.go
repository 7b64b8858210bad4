package state

import (
	"encoding/json"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/isotime"
)

// DefaultLookback is how far back a source without a checkpoint starts.
const DefaultLookback = 7 * 24 * time.Hour

// DefaultLastRun returns the checkpoint assumed for a source that has none.
func DefaultLastRun(now time.Time) time.Time {
	return now.UTC().Add(-DefaultLookback)
}

// Record is the persisted checkpoint of one source.
type Record struct {
	// LastRun is the end of the last successfully processed window.
	LastRun time.Time
	// Error describes the last failure; empty means the last run succeeded.
	Error string
}

// NewRecord builds a normalized record. A zero lastRun becomes
// DefaultLastRun(time.Now()).
func NewRecord(lastRun time.Time, errText string) Record {
	return Record{LastRun: lastRun, Error: errText}.Normalize(time.Now())
}

// IsEmpty reports whether r carries no data, which is what Get returns for
// a key that was never written.
func (r Record) IsEmpty() bool {
	return r.LastRun.IsZero() && r.Error == ""
}

// Normalize substitutes DefaultLastRun(now) for a missing LastRun. The
// default is computed from now on every call and never cached.
func (r Record) Normalize(now time.Time) Record {
	if r.LastRun.IsZero() {
		r.LastRun = DefaultLastRun(now)
	}
	return r
}

// recordJSON is the wire form shared with the other Gundi connectors.
type recordJSON struct {
	LastRun json.RawMessage `json:"last_run"`
	Error   *string         `json:"error"`
}

// MarshalJSON writes {"last_run": RFC 3339 or null, "error": string or null}.
func (r Record) MarshalJSON() ([]byte, error) {
	lastRun, err := isotime.Time{Time: r.LastRun}.MarshalJSON()
	if err != nil {
		return nil, err
	}
	out := recordJSON{LastRun: lastRun}
	if r.Error != "" {
		out.Error = &r.Error
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form. A last_run that is null, missing or
// not a recognizable timestamp decodes to the zero time; Normalize later
// replaces it with the default. Timestamps without a zone are UTC.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var lastRun isotime.Time
	if len(in.LastRun) > 0 {
		if err := lastRun.UnmarshalJSON(in.LastRun); err != nil {
			lastRun = isotime.Time{}
		}
	}

	r.LastRun = lastRun.Time
	r.Error = ""
	if in.Error != nil {
		r.Error = *in.Error
	}
	return nil
}
