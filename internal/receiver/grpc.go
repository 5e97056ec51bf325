package receiver

import (
	"context"
	"fmt"
	"net"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/session"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/grpc"
)

// GRPCReceiver accepts OTLP log exports over gRPC. It implements the
// OTLP LogsService.
type GRPCReceiver struct {
	collogspb.UnimplementedLogsServiceServer

	cfg      config.ReceiverConfig
	registry *session.Registry
	logger   Logger

	listener net.Listener
	server   *grpc.Server
}

// NewGRPCReceiver creates a gRPC receiver. It does not bind until Start
// is called.
func NewGRPCReceiver(cfg config.ReceiverConfig, registry *session.Registry, logger Logger) *GRPCReceiver {
	if logger == nil {
		logger = NopLogger{}
	}
	return &GRPCReceiver{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Start binds the configured port and begins serving. It returns
// immediately; the server runs on a background goroutine.
func (r *GRPCReceiver) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Bind, r.cfg.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return portError(r.cfg.GRPCPort)
	}
	r.listener = lis

	r.server = grpc.NewServer()
	collogspb.RegisterLogsServiceServer(r.server, r)

	go func() {
		_ = r.server.Serve(lis)
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (r *GRPCReceiver) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop stops the gRPC server and closes the listener.
func (r *GRPCReceiver) Stop() {
	if r.server != nil {
		r.server.GracefulStop()
	}
	if r.listener != nil {
		_ = r.listener.Close()
	}
}

// Export implements the OTLP LogsService export RPC.
func (r *GRPCReceiver) Export(ctx context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	processExport(req, r.registry, r.logger)
	return &collogspb.ExportLogsServiceResponse{}, nil
}
