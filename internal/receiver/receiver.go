package receiver

import (
	"context"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/session"
)

// Receiver runs the gRPC and HTTP OTLP endpoints as a unit.
type Receiver struct {
	grpc *GRPCReceiver
	http *HTTPReceiver
}

// New creates a combined receiver for both transports.
func New(cfg config.ReceiverConfig, registry *session.Registry, logger Logger) *Receiver {
	return &Receiver{
		grpc: NewGRPCReceiver(cfg, registry, logger),
		http: NewHTTPReceiver(cfg, registry, logger),
	}
}

// Start binds both transports. If the second bind fails the first is
// stopped so no listener leaks.
func (r *Receiver) Start(ctx context.Context) error {
	if err := r.grpc.Start(ctx); err != nil {
		return err
	}
	if err := r.http.Start(ctx); err != nil {
		r.grpc.Stop()
		return err
	}
	return nil
}

// Stop shuts both transports down.
func (r *Receiver) Stop() {
	if r.http != nil {
		r.http.Stop()
	}
	if r.grpc != nil {
		r.grpc.Stop()
	}
}
