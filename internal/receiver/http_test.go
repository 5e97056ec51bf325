package receiver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/session"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/protobuf/proto"
)

// startTestHTTP creates an HTTP receiver on an ephemeral port for testing.
func startTestHTTP(t *testing.T, registry *session.Registry) *HTTPReceiver {
	t.Helper()

	cfg := config.ReceiverConfig{
		HTTPPort: 0, // Use ephemeral port.
		Bind:     "127.0.0.1",
	}

	r := NewHTTPReceiver(cfg, registry, nil)

	// Manually bind to an ephemeral port.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	r.listener = lis

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logs", r.handleLogs)
	r.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		_ = r.server.Serve(lis)
	}()

	// Wait briefly for the server to be ready.
	time.Sleep(50 * time.Millisecond)

	return r
}

// makeToolResultRequest builds an OTLP log export request containing a
// single claude_code.tool_result record for the given session.
func makeToolResultRequest(sessionID, toolName, paramsJSON string, extra []*commonpb.KeyValue) *collogspb.ExportLogsServiceRequest {
	attrs := []*commonpb.KeyValue{
		{Key: "tool_name", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: toolName}}},
		{Key: "success", Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "true"}}},
	}
	if paramsJSON != "" {
		attrs = append(attrs, &commonpb.KeyValue{
			Key:   "tool_parameters",
			Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: paramsJSON}},
		})
	}
	attrs = append(attrs, extra...)

	return &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{
			{
				Resource: &resourcepb.Resource{
					Attributes: []*commonpb.KeyValue{
						{
							Key:   "session.id",
							Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: sessionID}},
						},
					},
				},
				ScopeLogs: []*logspb.ScopeLogs{
					{
						LogRecords: []*logspb.LogRecord{
							{
								TimeUnixNano: uint64(time.Now().UnixNano()),
								EventName:    toolResultEvent,
								Attributes:   attrs,
							},
						},
					},
				},
			},
		},
	}
}

func TestOTLPReceiver_HTTPEvents(t *testing.T) {
	t.Run("protobuf_content_type", func(t *testing.T) {
		registry := session.NewRegistry(nil)
		r := startTestHTTP(t, registry)
		defer r.Stop()

		req := makeToolResultRequest("sess-http-001", "Grep", `{"pattern":"auth"}`, nil)

		body, err := proto.Marshal(req)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}

		url := fmt.Sprintf("http://%s/v1/logs", r.Addr().String())
		resp, err := http.Post(url, "application/x-protobuf", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("HTTP POST failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		// Verify the call was recorded.
		s := registry.GetSession("sess-http-001")
		if s == nil {
			t.Fatal("expected session sess-http-001 to exist")
		}
		if s.GrepCalls != 1 {
			t.Errorf("expected 1 grep call, got %d", s.GrepCalls)
		}
	})

	t.Run("json_content_type", func(t *testing.T) {
		registry := session.NewRegistry(nil)
		r := startTestHTTP(t, registry)
		defer r.Stop()

		ts := fmt.Sprintf("%d", time.Now().UnixNano())
		jsonBody := map[string]any{
			"resourceLogs": []map[string]any{
				{
					"resource": map[string]any{
						"attributes": []map[string]any{
							{
								"key":   "session.id",
								"value": map[string]any{"stringValue": "sess-json-001"},
							},
						},
					},
					"scopeLogs": []map[string]any{
						{
							"logRecords": []map[string]any{
								{
									"timeUnixNano": ts,
									"eventName":    toolResultEvent,
									"attributes": []map[string]any{
										{
											"key":   "tool_name",
											"value": map[string]any{"stringValue": "Read"},
										},
										{
											"key":   "tool_parameters",
											"value": map[string]any{"stringValue": `{"file_path":"/src/a.go"}`},
										},
									},
								},
							},
						},
					},
				},
			},
		}

		body, err := json.Marshal(jsonBody)
		if err != nil {
			t.Fatalf("failed to marshal JSON: %v", err)
		}

		url := fmt.Sprintf("http://%s/v1/logs", r.Addr().String())
		resp, err := http.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("HTTP POST failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		s := registry.GetSession("sess-json-001")
		if s == nil {
			t.Fatal("expected session sess-json-001 to exist")
		}
		if s.ReadCalls != 1 {
			t.Errorf("expected 1 read call, got %d", s.ReadCalls)
		}
	})

	t.Run("invalid_payload_returns_400", func(t *testing.T) {
		registry := session.NewRegistry(nil)
		r := startTestHTTP(t, registry)
		defer r.Stop()

		url := fmt.Sprintf("http://%s/v1/logs", r.Addr().String())
		resp, err := http.Post(url, "application/x-protobuf", bytes.NewReader([]byte("not valid protobuf")))
		if err != nil {
			t.Fatalf("HTTP POST failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400 for invalid payload, got %d", resp.StatusCode)
		}

		// Server should still be operational.
		req := makeToolResultRequest("sess-recovery", "Glob", `{"pattern":"*.go"}`, nil)
		body, _ := proto.Marshal(req)
		resp2, err := http.Post(url, "application/x-protobuf", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("recovery POST failed: %v", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			t.Errorf("expected 200 after recovery, got %d", resp2.StatusCode)
		}

		if registry.GetSession("sess-recovery") == nil {
			t.Fatal("expected session after recovery from invalid payload")
		}
	})

	t.Run("invalid_json_returns_400", func(t *testing.T) {
		registry := session.NewRegistry(nil)
		r := startTestHTTP(t, registry)
		defer r.Stop()

		url := fmt.Sprintf("http://%s/v1/logs", r.Addr().String())
		resp, err := http.Post(url, "application/json", bytes.NewReader([]byte("{invalid json")))
		if err != nil {
			t.Fatalf("HTTP POST failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400 for invalid JSON, got %d", resp.StatusCode)
		}
	})

	t.Run("detection_fires_across_requests", func(t *testing.T) {
		registry := session.NewRegistry(nil)
		r := startTestHTTP(t, registry)
		defer r.Stop()

		url := fmt.Sprintf("http://%s/v1/logs", r.Addr().String())
		for _, pattern := range []string{"auth", "login", "token"} {
			req := makeToolResultRequest("sess-detect", "Grep", fmt.Sprintf(`{"pattern":%q}`, pattern), nil)
			body, _ := proto.Marshal(req)
			resp, err := http.Post(url, "application/x-protobuf", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("HTTP POST failed: %v", err)
			}
			resp.Body.Close()
		}

		s := registry.GetSession("sess-detect")
		if s == nil {
			t.Fatal("expected session sess-detect to exist")
		}
		if len(s.Suggestions) != 1 {
			t.Fatalf("expected 1 suggestion after 3 distinct searches, got %d", len(s.Suggestions))
		}
	})
}
