package state

import (
	"fmt"
	"strings"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
)

// NoSource is the source id used when an action's data is not divided per
// source.
const NoSource = "no-source"

const (
	keyPrefix = "integration_state"
	keySep    = "."
)

// Key addresses one checkpoint record.
type Key struct {
	IntegrationID string
	ActionID      string
	// SourceID defaults to NoSource when empty.
	SourceID string
}

// Source returns SourceID, or NoSource when it is empty.
func (k Key) Source() string {
	if k.SourceID == "" {
		return NoSource
	}
	return k.SourceID
}

// Validate rejects keys whose rendered form could collide with another
// triple: empty integration or action ids and segments containing the
// separator.
func (k Key) Validate() error {
	if k.IntegrationID == "" {
		return fmt.Errorf("%w: empty integration id", onyesha.ErrInvalidKey)
	}
	if k.ActionID == "" {
		return fmt.Errorf("%w: empty action id", onyesha.ErrInvalidKey)
	}
	for _, seg := range []string{k.IntegrationID, k.ActionID, k.Source()} {
		if strings.Contains(seg, keySep) {
			return fmt.Errorf("%w: segment %q contains %q", onyesha.ErrInvalidKey, seg, keySep)
		}
	}
	return nil
}

// String renders the backend key:
// integration_state.<integration_id>.<action_id>.<source_id>
func (k Key) String() string {
	return keyPrefix + keySep + k.IntegrationID + keySep + k.ActionID + keySep + k.Source()
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, keySep)
	if len(parts) != 4 || parts[0] != keyPrefix {
		return Key{}, fmt.Errorf("%w: %q is not a state key", onyesha.ErrInvalidKey, s)
	}
	k := Key{IntegrationID: parts[1], ActionID: parts[2], SourceID: parts[3]}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// actionPrefix is the rendered prefix shared by every source of an action.
func actionPrefix(integrationID, actionID string) string {
	return keyPrefix + keySep + integrationID + keySep + actionID + keySep
}
