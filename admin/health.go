// Package admin exposes the standard gRPC health service so orchestrators
// can probe the relay.
package admin

import (
	"chat-relay/contract"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RelayService is the health service name reported next to the overall one.
const RelayService = "chat.relay"

type HealthServer struct {
	log    *slog.Logger
	addr   string
	server *grpc.Server
	health *health.Server
}

var _ contract.Worker = (*HealthServer)(nil)

func NewHealthServer(log *slog.Logger, addr string) *HealthServer {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(log)))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	hs := &HealthServer{log: log, addr: addr, server: s, health: h}
	hs.SetServing(false)
	return hs
}

// SetServing flips both the overall and the relay status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(RelayService, status)
}

// Serve blocks until Stop is called.
func (h *HealthServer) Serve(listener net.Listener) error {
	h.log.Info("Starting gRPC health server", "address", listener.Addr().String())
	if err := h.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC health server error: %w", err)
	}
	return nil
}

// Run listens on the configured address and serves until ctx is done.
func (h *HealthServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- h.Serve(listener) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.Stop()
		return <-errCh
	}
}

// Stop reports NOT_SERVING to watchers then drains in-flight checks.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
