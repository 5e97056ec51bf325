package detector

import "time"

// Threshold option names accepted by Overlay. Unknown names are kept in
// the raw map but have no effect on detection.
const (
	OptMinGrepCalls      = "min_grep_calls"
	OptMinReadCalls      = "min_read_calls"
	OptMinGlobResults    = "min_glob_results"
	OptMaxGrepResults    = "max_grep_results"
	OptTimeWindowSeconds = "time_window_seconds"
)

// Thresholds holds the tuning knobs for the pattern rules. Values are
// fixed at construction; the detector never mutates them.
type Thresholds struct {
	MinGrepCalls   int           // searches within the window before Multiple Searches fires
	MinReadCalls   int           // consecutive reads before Exploratory Reading fires
	MinGlobResults int           // glob result size before Broad Glob fires
	MaxGrepResults int           // grep result lines before Noisy Grep fires
	TimeWindow     time.Duration // detection window for windowed rules

	raw map[string]float64 // caller-supplied overlay, unknown keys included
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinGrepCalls:   3,
		MinReadCalls:   5,
		MinGlobResults: 15,
		MaxGrepResults: 20,
		TimeWindow:     60 * time.Second,
	}
}

// Overlay builds a Thresholds by laying the supplied options over the
// defaults. Keys present in opts override the matching default; missing
// keys keep their default values. Unknown keys are retained in the raw
// map but do not influence detection.
func Overlay(opts map[string]float64) Thresholds {
	t := DefaultThresholds()
	if len(opts) == 0 {
		return t
	}

	t.raw = make(map[string]float64, len(opts))
	for k, v := range opts {
		t.raw[k] = v
	}

	if v, ok := opts[OptMinGrepCalls]; ok {
		t.MinGrepCalls = int(v)
	}
	if v, ok := opts[OptMinReadCalls]; ok {
		t.MinReadCalls = int(v)
	}
	if v, ok := opts[OptMinGlobResults]; ok {
		t.MinGlobResults = int(v)
	}
	if v, ok := opts[OptMaxGrepResults]; ok {
		t.MaxGrepResults = int(v)
	}
	if v, ok := opts[OptTimeWindowSeconds]; ok {
		t.TimeWindow = time.Duration(v * float64(time.Second))
	}

	return t
}

// Raw returns the caller-supplied option value and whether it was set,
// including options the detector does not recognize.
func (t Thresholds) Raw(key string) (float64, bool) {
	v, ok := t.raw[key]
	return v, ok
}
