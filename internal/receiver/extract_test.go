package receiver

import (
	"testing"

	"github.com/nixlim/cc-scout/internal/detector"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
)

func TestExtractObservations_ToolResultOnly(t *testing.T) {
	req := makeToolResultRequest("sess-1", "Grep", `{"pattern":"auth","path":"/src"}`, nil)
	// Add a non-tool event that must be ignored.
	req.ResourceLogs[0].ScopeLogs[0].LogRecords[0].EventName = "claude_code.user_prompt"

	if got := extractObservations(req); len(got) != 0 {
		t.Fatalf("non-tool events must be skipped, got %d observations", len(got))
	}
}

func TestExtractObservations_ParsesParameters(t *testing.T) {
	req := makeToolResultRequest("sess-1", "Grep", `{"pattern":"auth","path":"/src","limit":10,"multiline":true}`, nil)

	got := extractObservations(req)
	if len(got) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(got))
	}

	obs := got[0]
	if obs.SessionID != "sess-1" || obs.ToolName != "Grep" {
		t.Errorf("identity wrong: %+v", obs)
	}
	want := map[string]string{
		"pattern":   "auth",
		"path":      "/src",
		"limit":     "10",
		"multiline": "true",
	}
	for k, v := range want {
		if obs.Args[k] != v {
			t.Errorf("Args[%q] = %q, want %q", k, obs.Args[k], v)
		}
	}
	if obs.Timestamp.IsZero() {
		t.Error("timestamp not extracted")
	}
}

func TestExtractObservations_ResultVariants(t *testing.T) {
	t.Run("result_count_becomes_items", func(t *testing.T) {
		req := makeToolResultRequest("s", "Glob", `{"pattern":"*.go"}`, []*commonpb.KeyValue{
			{Key: "result_count", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: 17}}},
		})
		got := extractObservations(req)
		if len(got) != 1 {
			t.Fatalf("expected 1 observation, got %d", len(got))
		}
		if got[0].Result.ItemCount() != 17 {
			t.Errorf("ItemCount = %d, want 17", got[0].Result.ItemCount())
		}
	})

	t.Run("result_becomes_text", func(t *testing.T) {
		req := makeToolResultRequest("s", "Grep", `{"pattern":"x"}`, []*commonpb.KeyValue{
			{Key: "result", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "a\nb\nc"}}},
		})
		got := extractObservations(req)
		if got[0].Result.Text() != "a\nb\nc" {
			t.Errorf("Text = %q", got[0].Result.Text())
		}
	})

	t.Run("neither_is_absent", func(t *testing.T) {
		req := makeToolResultRequest("s", "Read", `{"file_path":"/a"}`, nil)
		got := extractObservations(req)
		if got[0].Result.Present() {
			t.Error("expected absent result")
		}
	})
}

func TestParseToolParameters_Malformed(t *testing.T) {
	if got := parseToolParameters(`{broken`); got != nil {
		t.Errorf("malformed JSON should yield nil, got %v", got)
	}
	if got := parseToolParameters(""); got != nil {
		t.Errorf("empty input should yield nil, got %v", got)
	}
	// Nested values are dropped, scalars kept.
	got := parseToolParameters(`{"pattern":"x","nested":{"a":1}}`)
	if got["pattern"] != "x" {
		t.Errorf("pattern lost: %v", got)
	}
	if _, ok := got["nested"]; ok {
		t.Errorf("nested value should be dropped: %v", got)
	}
}
