package detector

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaultThresholds(t *testing.T) {
	d := DefaultThresholds()

	if d.MinGrepCalls != 3 {
		t.Errorf("MinGrepCalls = %d, want 3", d.MinGrepCalls)
	}
	if d.MinReadCalls != 5 {
		t.Errorf("MinReadCalls = %d, want 5", d.MinReadCalls)
	}
	if d.MinGlobResults != 15 {
		t.Errorf("MinGlobResults = %d, want 15", d.MinGlobResults)
	}
	if d.MaxGrepResults != 20 {
		t.Errorf("MaxGrepResults = %d, want 20", d.MaxGrepResults)
	}
	if d.TimeWindow != 60*time.Second {
		t.Errorf("TimeWindow = %v, want 60s", d.TimeWindow)
	}
}

func TestOverlay(t *testing.T) {
	got := Overlay(map[string]float64{
		"min_grep_calls":      5,
		"time_window_seconds": 30,
	})

	if got.MinGrepCalls != 5 {
		t.Errorf("MinGrepCalls = %d, want 5", got.MinGrepCalls)
	}
	if got.TimeWindow != 30*time.Second {
		t.Errorf("TimeWindow = %v, want 30s", got.TimeWindow)
	}
	// Untouched keys keep their defaults.
	if got.MinReadCalls != 5 || got.MinGlobResults != 15 || got.MaxGrepResults != 20 {
		t.Error("unspecified thresholds must keep default values")
	}
}

func TestOverlay_NilKeepsDefaults(t *testing.T) {
	if !reflect.DeepEqual(Overlay(nil), DefaultThresholds()) {
		t.Error("nil overlay must equal defaults")
	}
}
