// Package receiver implements the OTLP/HTTP and OTLP/gRPC log endpoints
// that Claude Code instances export telemetry to. Tool-result events are
// extracted and fed to the session registry; everything else is dropped.
package receiver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/session"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// HTTPReceiver accepts OTLP log exports over HTTP on /v1/logs. Both
// protobuf and JSON content types are supported.
type HTTPReceiver struct {
	cfg      config.ReceiverConfig
	registry *session.Registry
	logger   Logger

	listener net.Listener
	server   *http.Server
}

// NewHTTPReceiver creates an HTTP receiver. It does not bind until
// Start is called.
func NewHTTPReceiver(cfg config.ReceiverConfig, registry *session.Registry, logger Logger) *HTTPReceiver {
	if logger == nil {
		logger = NopLogger{}
	}
	return &HTTPReceiver{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Start binds the configured port and begins serving. It returns
// immediately; the server runs on a background goroutine.
func (r *HTTPReceiver) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Bind, r.cfg.HTTPPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return portError(r.cfg.HTTPPort)
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

	return nil
}

// Addr returns the bound address, or nil before Start.
func (r *HTTPReceiver) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop shuts the server down and closes the listener.
func (r *HTTPReceiver) Stop() {
	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.server.Shutdown(ctx)
	}
	if r.listener != nil {
		_ = r.listener.Close()
	}
}

// handleLogs decodes an OTLP logs export request and feeds the extracted
// tool observations to the registry. Malformed payloads get a 400; the
// server stays up.
func (r *HTTPReceiver) handleLogs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	contentType := req.Header.Get("Content-Type")
	export := &collogspb.ExportLogsServiceRequest{}

	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := protojson.Unmarshal(body, export); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}
	default:
		if err := proto.Unmarshal(body, export); err != nil {
			http.Error(w, "invalid protobuf payload", http.StatusBadRequest)
			return
		}
	}

	processExport(export, r.registry, r.logger)

	resp := &collogspb.ExportLogsServiceResponse{}
	if strings.HasPrefix(contentType, "application/json") {
		data, err := protojson.Marshal(resp)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	data, err := proto.Marshal(resp)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(data)
}

// processExport feeds every tool observation in the request to the
// registry. Shared by the HTTP and gRPC transports.
func processExport(req *collogspb.ExportLogsServiceRequest, registry *session.Registry, logger Logger) {
	for _, obs := range extractObservations(req) {
		logger.LogToolCall(obs.SessionID, obs.ToolName, obs.Args)
		suggestion := registry.Observe(obs.SessionID, obs.ToolName, obs.Args, obs.Result)
		if suggestion != nil {
			logger.LogSuggestion(obs.SessionID, *suggestion)
		}
	}
}
