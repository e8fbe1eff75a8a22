package main

import (
	"chat-relay/internal"
	"chat-relay/runtime"
	"net"
	"strconv"
	"time"
)

type Config struct {
	Host             string        `env:"HOST"`
	Port             int           `env:"PORT,default=5000" validate:"gte=0,lte=65535"`
	PoolSize         int           `env:"POOL_SIZE,default=50" validate:"gte=1"`
	AcceptTimeout    time.Duration `env:"ACCEPT_TIMEOUT,default=1s" validate:"gt=0"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gte=0"`
	MaxLineBytes     int           `env:"MAX_LINE_BYTES,default=65536" validate:"gte=64"`
	EventBufferSize  int           `env:"EVENT_BUFFER_SIZE,default=256" validate:"gte=1"`
	SinkTimeout      time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"gt=0"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	RateLimit        float64       `env:"RATE_LIMIT,default=0" validate:"gte=0"`
	RateBurst        int           `env:"RATE_BURST,default=10" validate:"gte=1"`
	CensoredWords    string        `env:"CENSORED_WORDS"`
	CharReplacement  string        `env:"CHARACTER_REPLACEMENT,default=*"`
	ReportInterval   time.Duration `env:"REPORT_INTERVAL,default=30s" validate:"gte=0"`
	JournalPath      string        `env:"JOURNAL_PATH"`
	WebsocketAddr    string        `env:"WS_ADDR" validate:"omitempty,hostname_port"`
	WebsocketOrigins string        `env:"WS_ALLOWED_ORIGINS"`
	AdminPort        int           `env:"ADMIN_PORT,default=0" validate:"gte=0,lte=65535"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

func (c Config) server() runtime.Config {
	return runtime.Config{
		Host:            c.Host,
		Port:            c.Port,
		PoolSize:        c.PoolSize,
		AcceptTimeout:   c.AcceptTimeout,
		WriteTimeout:    c.WriteTimeout,
		MaxLineBytes:    c.MaxLineBytes,
		EventBufferSize: c.EventBufferSize,
		SinkTimeout:     c.SinkTimeout,
		RestartInterval: c.RestartInterval,
		RateLimit:       c.RateLimit,
		RateBurst:       c.RateBurst,
		ReportInterval:  c.ReportInterval,
	}
}

func (c Config) adminAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.AdminPort))
}

func (c Config) censoredWords() []string {
	return internal.SplitList(c.CensoredWords)
}
