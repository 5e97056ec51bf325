package detector

import "time"

// history is the windowed record of recent tool activity. It keeps the
// full call sequence plus two sub-sequences the windowed rules consume
// directly: search calls (Grep and Glob) and Read calls. All three are
// append-only in arrival order, so they stay sorted by non-decreasing
// timestamp without explicit sorting.
type history struct {
	all      []ToolCall
	searches []ToolCall
	reads    []ToolCall
}

// record appends the call to the full history and to the matching
// sub-sequence, if any.
func (h *history) record(c ToolCall) {
	h.all = append(h.all, c)
	switch c.Kind {
	case ToolGrep, ToolGlob:
		h.searches = append(h.searches, c)
	case ToolRead:
		h.reads = append(h.reads, c)
	}
}

// recent returns the order-preserving suffix of calls whose timestamp is
// within window of now. Pure read.
func recent(calls []ToolCall, window time.Duration, now time.Time) []ToolCall {
	cutoff := now.Add(-window)
	// Calls are sorted by time; walk back to find the suffix start.
	i := len(calls)
	for i > 0 && !calls[i-1].Time.Before(cutoff) {
		i--
	}
	return calls[i:]
}

// evictStale drops entries older than twice the detection window from
// every sequence. The 2x retention keeps enough history for the
// exploratory-reading scan, which walks the full sequence without a
// window of its own.
func (h *history) evictStale(window time.Duration, now time.Time) {
	cutoff := now.Add(-2 * window)
	h.all = dropBefore(h.all, cutoff)
	h.searches = dropBefore(h.searches, cutoff)
	h.reads = dropBefore(h.reads, cutoff)
}

// reset clears all three sequences. Used at session boundaries.
func (h *history) reset() {
	h.all = nil
	h.searches = nil
	h.reads = nil
}

// dropBefore removes calls strictly older than cutoff, preserving order.
func dropBefore(calls []ToolCall, cutoff time.Time) []ToolCall {
	n := 0
	for _, c := range calls {
		if !c.Time.Before(cutoff) {
			calls[n] = c
			n++
		}
	}
	return calls[:n]
}
