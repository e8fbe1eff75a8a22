package admin

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServer_ReportsRelayStatus(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given a running health server
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	server := NewHealthServer(logs.GetLoggerFromLevel(slog.LevelDebug), listener.Addr().String())
	done := make(chan error, 1)
	go func() { done <- server.Serve(listener) }()

	conn, err := grpc.NewClient(listener.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func(service string) healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		req.NoError(err)
		return resp.GetStatus()
	}

	// Then it starts as not serving
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check(""))

	// When the relay comes up
	server.SetServing(true)

	// Then both services report serving
	req.Equal(healthpb.HealthCheckResponse_SERVING, check(""))
	req.Equal(healthpb.HealthCheckResponse_SERVING, check(RelayService))

	// When it is stopped
	server.Stop()

	// Then Serve returns cleanly
	select {
	case err := <-done:
		req.NoError(err)
	case <-ctx.Done():
		t.Fatal("health server did not stop")
	}
}

func TestHealthServer_RunStopsWithContext(t *testing.T) {
	req := require.New(t)

	server := NewHealthServer(logs.GetLoggerFromLevel(slog.LevelError), "127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
