package e2e

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration and skips when no relay is
// available.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("E2E_RELAY_ADDR not set")
	}
}

// Peer is one raw protocol connection to the relay.
type Peer struct {
	s      *BaseRelaySuite
	name   string
	conn   net.Conn
	reader *bufio.Reader
}

func (s *BaseRelaySuite) header(step string) {
	header := fmt.Sprintf("  ====== %s ======", step)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Join dials the relay and says HELLO.
func (s *BaseRelaySuite) Join(name string) *Peer {
	s.header("Join as " + name)
	conn, err := net.DialTimeout("tcp", s.Config.RelayAddr, 5*time.Second)
	s.Require().NoError(err, "Failed to connect to relay at "+s.Config.RelayAddr)
	p := &Peer{s: s, name: name, conn: conn, reader: bufio.NewReader(conn)}
	p.Send("HELLO " + name)
	return p
}

func (p *Peer) Send(line string) {
	p.s.T().Logf("%s >> %s", p.name, line)
	_, err := fmt.Fprintf(p.conn, "%s\n", line)
	p.s.Require().NoError(err)
}

// Await reads lines until one satisfies match.
func (p *Peer) Await(description string, match func(line string) bool) string {
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = p.conn.SetReadDeadline(deadline)
		line, err := p.reader.ReadString('\n')
		p.s.Require().NoError(err, "%s never saw %s", p.name, description)
		line = strings.TrimRight(line, "\r\n")
		p.s.T().Logf("%s << %s", p.name, line)
		if match(line) {
			return line
		}
	}
}

func (p *Peer) Close() {
	_ = p.conn.Close()
}

// WithHealth provides a health client when E2E_HEALTH_ADDR is set.
func (s *BaseRelaySuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.HealthAddr == "" {
		s.T().Skip("E2E_HEALTH_ADDR not set")
	}
	s.header(name)
	conn, err := grpc.NewClient(s.Config.HealthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}
