package detector

import "time"

// Detector is the single entry point for pattern detection. It owns a
// private history store and runs the rules on every recorded call.
//
// A Detector is not safe for concurrent use: it is designed to be driven
// sequentially by one logical caller (the session registry serializes
// access per session). Every operation completes deterministically in
// time proportional to the retained history; nothing blocks or fails.
type Detector struct {
	thresholds Thresholds
	hist       history
	clock      func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock injects a time source, replacing time.Now. Tests use this
// for deterministic timestamps.
func WithClock(clock func() time.Time) Option {
	return func(d *Detector) {
		d.clock = clock
	}
}

// New creates a Detector with the given threshold overlay (nil for all
// defaults) and options.
func New(opts map[string]float64, options ...Option) *Detector {
	d := &Detector{
		thresholds: Overlay(opts),
		clock:      time.Now,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Thresholds returns the effective threshold configuration.
func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

// OnToolCall records one tool invocation and returns the first fired
// suggestion, or nil when no pattern matched. Rules run in fixed
// priority order and short-circuit on the first match; stale history is
// evicted after every pass. Missing or malformed arguments degrade to
// empty-string and zero defaults, so this never fails.
func (d *Detector) OnToolCall(toolName string, args map[string]string, result Result) *Suggestion {
	now := d.clock()
	d.hist.record(ToolCall{
		Time:   now,
		Kind:   ParseToolKind(toolName),
		Name:   toolName,
		Args:   args,
		Result: result,
	})

	var fired *Suggestion
	for _, r := range rules {
		if s := r(&d.hist, d.thresholds, now); s != nil {
			fired = s
			break
		}
	}

	d.hist.evictStale(d.thresholds.TimeWindow, now)
	return fired
}

// Reset clears all recorded history. Callers invoke it at session
// boundaries; nothing triggers it automatically.
func (d *Detector) Reset() {
	d.hist.reset()
}
