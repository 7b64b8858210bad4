package isotime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse_Layouts(t *testing.T) {
	plus2 := time.FixedZone("", 2*60*60)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:30:00+02:00", time.Date(2024, 1, 1, 10, 30, 0, 0, plus2)},
		{"2024-01-01 00:00:00+00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-01-03 16:05:56.120000+00:00", time.Date(2023, 1, 3, 16, 5, 56, 120000000, time.UTC)},
		{"2023-01-03T16:05:56.12", time.Date(2023, 1, 3, 16, 5, 56, 120000000, time.UTC)},
		{"2023-01-03 16:05:56", time.Date(2023, 1, 3, 16, 5, 56, 0, time.UTC)},
		{"2023-01-03", time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse_NaiveIsUTC(t *testing.T) {
	got, err := Parse("2024-05-06T07:08:09")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
	if got.Hour() != 7 || got.Minute() != 8 || got.Second() != 9 {
		t.Errorf("wall clock changed: %v", got)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2024-13-01T00:00:00Z"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestTime_JSON(t *testing.T) {
	var v struct {
		At Time `json:"at"`
	}
	if err := json.Unmarshal([]byte(`{"at":"2022-02-23 11:49:37.350000"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2022, 2, 23, 11, 49, 37, 350000000, time.UTC)
	if !v.At.Equal(want) {
		t.Errorf("At = %v, want %v", v.At, want)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"at":"2022-02-23T11:49:37.35Z"}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestTime_NullIsZero(t *testing.T) {
	var v struct {
		At Time `json:"at"`
	}
	if err := json.Unmarshal([]byte(`{"at":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.At.IsZero() {
		t.Errorf("At = %v, want zero", v.At)
	}
	out, _ := json.Marshal(v)
	if string(out) != `{"at":null}` {
		t.Errorf("marshal = %s", out)
	}
}
