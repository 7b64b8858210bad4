package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PADAS/gundi-integration-onyesha/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"RunID", id.NewRunID, "run_"},
		{"ScheduleID", id.NewScheduleID, "sched_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
			if len(got) != len(tt.prefix)+32 {
				t.Errorf("unexpected length %d for %q", len(got), got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := id.NewRunID()
	parsed, err := id.ParseRunID(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != original {
		t.Errorf("round-trip mismatch: %q != %q", parsed, original)
	}
	if parsed.UUID().Version() != 7 {
		t.Errorf("expected UUIDv7, got version %d", parsed.UUID().Version())
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no prefix", "0190f3c1a8e07b3c9d2e4f5a6b7c8d9e"},
		{"upper prefix", "RUN_0190f3c1a8e07b3c9d2e4f5a6b7c8d9e"},
		{"short suffix", "run_0190f3c1"},
		{"bad hex", "run_zz90f3c1a8e07b3c9d2e4f5a6b7c8d9e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	sched := id.NewScheduleID()
	if _, err := id.ParseRunID(sched.String()); err == nil {
		t.Error("expected ParseRunID to reject a schedule ID")
	}
}

func TestOrdering(t *testing.T) {
	a := id.NewRunID()
	b := id.NewRunID()
	if a.String() >= b.String() {
		t.Errorf("expected %q < %q", a, b)
	}
}

func TestNil(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should be nil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil.String() = %q", id.Nil.String())
	}
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Run id.ID `json:"run"`
	}
	in := wrapper{Run: id.NewRunID()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Run != in.Run {
		t.Errorf("got %q, want %q", out.Run, in.Run)
	}

	var empty wrapper
	if err := json.Unmarshal([]byte(`{"run":""}`), &empty); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !empty.Run.IsNil() {
		t.Error("expected Nil for empty string")
	}
}
