package duration

import (
	"encoding/json"
	"testing"
)

func TestParseMilliseconds(t *testing.T) {
	cases := map[string]int64{
		"500":             500,
		"1000ms":          1000,
		"250milliseconds": 250,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSeconds(t *testing.T) {
	cases := map[string]int64{
		"1s":        1000,
		"2.5s":      2500,
		"10seconds": 10000,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseMinutes(t *testing.T) {
	cases := map[string]int64{
		"1m":         60000,
		"2min":       120000,
		"0.5minutes": 30000,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseHours(t *testing.T) {
	cases := map[string]int64{
		"1h":     3600000,
		"2hours": 7200000,
		"0.5h":   1800000,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"abc", "10x", ""} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestMillisUnmarshalFromNumber(t *testing.T) {
	var m Millis
	if err := json.Unmarshal([]byte(`1500`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Int() != 1500 {
		t.Errorf("got %d, want 1500", m.Int())
	}
}

func TestMillisUnmarshalFromString(t *testing.T) {
	var m Millis
	if err := json.Unmarshal([]byte(`"2.5s"`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Int() != 2500 {
		t.Errorf("got %d, want 2500", m.Int())
	}
}

func TestMillisUnmarshalInvalidString(t *testing.T) {
	var m Millis
	if err := json.Unmarshal([]byte(`"10x"`), &m); err == nil {
		t.Error("expected error for unknown unit")
	}
}
