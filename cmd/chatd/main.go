package main

import (
	"chat-relay/admin"
	"chat-relay/contract"
	"chat-relay/gateway"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/sink"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and keeps ownership of their cleanup, so deferred
// closes always execute before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := internal.Validate(config); err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation of display names
	moderator, err := moderation.NewModerator(config.censoredWords(), charReplacement, log)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator: %w", err)
	}
	options := []runtime.Option{runtime.WithModerator(moderator)}

	// 3. Presence journal (BadgerDB), optional
	if config.JournalPath != "" {
		db, err := repositories.OpenBadger(config.JournalPath, log)
		if err != nil {
			return exitRuntime, err
		}
		defer func() {
			log.Info("Closing journal...")
			_ = db.Close()
		}()
		journal := repositories.NewJournalRepository(db, log)
		options = append(options, runtime.WithSinks(sink.NewJournalSink(journal, log)))
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Relay
	server := runtime.NewServer(log, config.server(), options...)
	if err := server.Start(ctx); err != nil {
		return exitRuntime, err
	}

	// 6. Side servers: websocket gateway and health, both optional
	var sidecars []contract.Worker
	var health *admin.HealthServer
	if config.WebsocketAddr != "" {
		sidecars = append(sidecars, gateway.NewGateway(log, server, gateway.Config{
			Addr:           config.WebsocketAddr,
			AllowedOrigins: internal.SplitList(config.WebsocketOrigins),
			MaxLineBytes:   config.MaxLineBytes,
			WriteTimeout:   config.WriteTimeout,
		}))
	}
	if config.AdminPort > 0 {
		health = admin.NewHealthServer(log, config.adminAddress())
		health.SetServing(true)
		sidecars = append(sidecars, health)
	}
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(sidecars...)
	sidecarsDone := make(chan struct{})
	go func() {
		defer close(sidecarsDone)
		supervisor.Run(ctx)
	}()

	// 7. Wait for a stop signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// 8. Final cleanup
	if health != nil {
		health.SetServing(false)
	}
	server.Interrupt()
	server.Wait()
	supervisor.Stop()
	<-sidecarsDone
	log.Info("Relay stopped cleanly")
	return exitOK, nil
}
