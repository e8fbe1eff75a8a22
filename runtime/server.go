package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/runtime/workers"
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	Host            string
	Port            int
	PoolSize        int
	AcceptTimeout   time.Duration
	WriteTimeout    time.Duration
	MaxLineBytes    int
	EventBufferSize int
	SinkTimeout     time.Duration
	RestartInterval time.Duration
	// RateLimit is the sustained number of MSG per second per connection,
	// zero disables it.
	RateLimit float64
	RateBurst int
	// ReportInterval enables the periodic status log when positive.
	ReportInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Port:            5000,
		PoolSize:        50,
		AcceptTimeout:   time.Second,
		WriteTimeout:    10 * time.Second,
		MaxLineBytes:    64 * 1024,
		EventBufferSize: 256,
		SinkTimeout:     2 * time.Second,
		RestartInterval: 200 * time.Millisecond,
		RateBurst:       10,
	}
}

type Option func(*Server)

// WithSinks adds sinks fed after the broadcast sink, in the given order.
func WithSinks(sinks ...contract.EventSink) Option {
	return func(s *Server) { s.sinks = append(s.sinks, sinks...) }
}

func WithModerator(m *moderation.Moderator) Option {
	return func(s *Server) { s.moderator = m }
}

func WithMonitoring(mm *observability.MonitoringManager) Option {
	return func(s *Server) { s.monitoring = mm }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server accepts chat clients and relays their lines to each other.
type Server struct {
	log        *slog.Logger
	cfg        Config
	registry   *Registry
	monitoring *observability.MonitoringManager
	moderator  *moderation.Moderator
	sinks      []contract.EventSink
	events     chan event.DomainEvent
	now        func() time.Time
	protocol   *ChatProtocol

	// lifecycle is held for reading while a connection is admitted and for
	// writing while the running flag flips.
	lifecycle  sync.RWMutex
	running    bool
	started    bool
	listener   net.Listener
	pool       *Pool
	supervisor *workers.Supervisor
	cancel     context.CancelFunc
	stopped    atomic.Bool
	done       chan struct{}
}

func NewServer(log *slog.Logger, cfg Config, opts ...Option) *Server {
	s := &Server{
		log:  log,
		cfg:  cfg,
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.monitoring == nil {
		s.monitoring = observability.NewMonitoringManager(log)
	}
	s.registry = NewRegistry(log)
	s.events = make(chan event.DomainEvent, max(cfg.EventBufferSize, 1))
	s.protocol = NewChatProtocol(log, s.registry, s, s.moderator, s.monitoring, s.now)
	return s
}

// Start binds the listening socket and starts the accept loop. A bind
// failure is returned as *errors.BindError and never retried.
func (s *Server) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.started {
		return errors.ErrServerAlreadyStarted
	}
	if s.stopped.Load() {
		return errors.ErrServerStopped
	}

	address := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return &errors.BindError{Address: address, Err: err}
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.started, s.running = true, true
	s.listener, s.cancel = listener, cancel
	s.pool = NewPool(runCtx, s.log, s.cfg.PoolSize)
	s.supervisor = workers.NewSupervisor(s.log, s.cfg.RestartInterval)

	sinks := append([]contract.EventSink{NewBroadcastSink(s.log, s.registry, s.monitoring), s.monitoring}, s.sinks...)
	s.supervisor.Add(
		&acceptor{log: s.log, listener: listener, server: s, timeout: s.cfg.AcceptTimeout},
		workers.NewEventFanout(s.log, s.events, s.cfg.SinkTimeout, sinks...),
	)
	if s.cfg.ReportInterval > 0 {
		s.supervisor.Add(workers.NewReporterWorker(s.log, s.monitoring, s.cfg.ReportInterval, s.registry.Len))
	}

	go func() {
		defer close(s.done)
		s.supervisor.Run(runCtx)
	}()
	go func() {
		<-runCtx.Done()
		s.Interrupt()
	}()

	s.log.Info("Server started", "address", listener.Addr().String(), "pool_size", s.cfg.PoolSize)
	return nil
}

// Admit registers a new transport and starts reading it. The newcomer is
// told about every participant already registered.
func (s *Server) Admit(t Transport) (*Connection, error) {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	if !s.running {
		_ = t.Close()
		return nil, errors.ErrServerStopped
	}

	c := NewConnection(t, s.newLimiter())
	s.monitoring.IncrAccepted()
	s.registry.Join(c)
	s.log.Debug("Connection accepted", "connection_id", c.ID(), "address", c.Address())

	s.pool.Submit(NewConnectionWorker(s.log, c, s.protocol, s, s.registry), func() {
		s.log.Debug("Connection cancelled before being served", "connection_id", c.ID())
		c.MarkClosed()
		s.registry.Remove(c)
		s.Release(c)
	})
	return c, nil
}

// Publish queues an event for the fan-out, waiting while the queue is full.
func (s *Server) Publish(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unregister removes a connection whose peer went away.
func (s *Server) Unregister(c *Connection) bool {
	return s.registry.Remove(c)
}

// Release closes a connection's transport once.
func (s *Server) Release(c *Connection) {
	if c.Release() {
		s.monitoring.DecrActive()
	}
}

// Interrupt stops the server: every connection is closed, the registry
// emptied, queued workers cancelled and the listener closed. Teardown errors
// are swallowed. Calling it more than once is harmless.
func (s *Server) Interrupt() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}

	s.lifecycle.Lock()
	s.running = false
	listener, pool, cancel := s.listener, s.pool, s.cancel
	s.lifecycle.Unlock()

	for _, c := range s.registry.Clear() {
		c.MarkClosed()
		s.Release(c)
	}
	if pool != nil {
		pool.Shutdown()
	}
	if listener != nil {
		if err := listener.Close(); err != nil {
			s.log.Debug("Listener close failed", "error", err)
		}
	}
	if cancel != nil {
		cancel()
	}
	s.log.Info("Server stopped")
}

// Wait blocks until every worker started by the server has returned.
func (s *Server) Wait() {
	s.lifecycle.RLock()
	started, pool := s.started, s.pool
	s.lifecycle.RUnlock()
	if !started {
		return
	}
	<-s.done
	pool.Wait()
}

// Addr is the bound listening address, nil before Start.
func (s *Server) Addr() net.Addr {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Registry() *Registry { return s.registry }

func (s *Server) Monitoring() *observability.MonitoringManager { return s.monitoring }

func (s *Server) Running() bool {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	return s.running
}

func (s *Server) newLimiter() *rate.Limiter {
	if s.cfg.RateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.cfg.RateLimit), max(s.cfg.RateBurst, 1))
}
