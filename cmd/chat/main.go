package main

import (
	"bufio"
	"chat-relay/client"
	"chat-relay/cypher"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/ui"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK     = 0
	exitConfig = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	cy, err := cypher.New(config.Cypher, config.Secret)
	if err != nil {
		return exitConfig, err
	}
	moderator, err := moderation.NewModerator(internal.SplitList(config.CensoredWords), '*', log)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator: %w", err)
	}

	// 2. Presentation & client
	terminal := ui.NewTerminal(os.Stdout, config.Colours)
	model := client.NewModel(config.User, terminal)
	chat := client.NewClient(log, model, terminal,
		client.WithCypher(cy),
		client.WithModerator(moderator),
		client.WithDialTimeout(config.DialTimeout),
	)
	sh := &shell{
		log:         log,
		client:      chat,
		terminal:    terminal,
		out:         os.Stdout,
		defaultPort: config.ServerPort,
		secret:      config.Secret,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect to the configured relay, then read stdin
	sh.connect(ctx, net.JoinHostPort(config.ServerHost, strconv.Itoa(config.ServerPort)))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print(terminal.Prompt())
		select {
		case <-ctx.Done():
			chat.Stop()
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				chat.Stop()
				return exitOK, nil
			}
			if sh.handle(ctx, line) {
				return exitOK, nil
			}
		}
	}
}
