package state_test

import (
	"errors"
	"testing"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		key  state.Key
		want string
	}{
		{state.Key{IntegrationID: "org1", ActionID: "pull_observations", SourceID: "dev42"}, "integration_state.org1.pull_observations.dev42"},
		{state.Key{IntegrationID: "org1", ActionID: "pull_observations"}, "integration_state.org1.pull_observations.no-source"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKey_ValidateRejectsCollisions(t *testing.T) {
	// ("a.b","c") and ("a","b.c") would otherwise render identically.
	bad := []state.Key{
		{IntegrationID: "a.b", ActionID: "c"},
		{IntegrationID: "a", ActionID: "b.c"},
		{IntegrationID: "a", ActionID: "b", SourceID: "c.d"},
		{ActionID: "b"},
		{IntegrationID: "a"},
	}
	for _, k := range bad {
		if err := k.Validate(); !errors.Is(err, onyesha.ErrInvalidKey) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	k := state.Key{IntegrationID: "7f3c", ActionID: "pull_observations", SourceID: "150167"}
	got, err := state.ParseKey(k.String())
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if got != k {
		t.Errorf("ParseKey = %+v, want %+v", got, k)
	}

	for _, s := range []string{"", "integration_state.a.b", "other.a.b.c", "integration_state.a.b.c.d"} {
		if _, err := state.ParseKey(s); !errors.Is(err, onyesha.ErrInvalidKey) {
			t.Errorf("ParseKey(%q) = %v, want ErrInvalidKey", s, err)
		}
	}
}
