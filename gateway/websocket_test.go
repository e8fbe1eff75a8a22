package gateway

import (
	"bufio"
	"chat-relay/runtime"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T) *runtime.Server {
	t.Helper()
	cfg := runtime.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.AcceptTimeout = 50 * time.Millisecond
	server := runtime.NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), cfg)
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() {
		server.Interrupt()
		server.Wait()
	})
	return server
}

func startGateway(t *testing.T, relay *runtime.Server, origins ...string) *httptest.Server {
	t.Helper()
	gw := NewGateway(logs.GetLoggerFromLevel(slog.LevelDebug), relay, Config{
		AllowedOrigins: origins,
		MaxLineBytes:   1024,
		WriteTimeout:   time.Second,
	})
	httpServer := httptest.NewServer(gw.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer
}

func wsURL(httpServer *httptest.Server) string {
	return "ws" + strings.TrimPrefix(httpServer.URL, "http") + Path
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	return string(data)
}

func TestGateway_WebsocketClientJoinsTheRelay(t *testing.T) {
	req := require.New(t)

	// Given a relay with a websocket gateway
	relay := startRelay(t)
	httpServer := startGateway(t, relay)

	// When a websocket client says HELLO
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer), nil)
	req.NoError(err)
	defer conn.Close()
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("HELLO alex\n")))

	// Then the relay announces it back over the websocket
	req.Equal("CONNECTED alex 127.0.0.1", readFrame(t, conn))
}

func TestGateway_TCPAndWebsocketClientsSeeEachOther(t *testing.T) {
	req := require.New(t)

	// Given a TCP client already connected to the relay
	relay := startRelay(t)
	httpServer := startGateway(t, relay)

	tcp, err := net.Dial("tcp", relay.Addr().String())
	req.NoError(err)
	defer tcp.Close()
	reader := bufio.NewReader(tcp)
	readTCP := func() string {
		_ = tcp.SetReadDeadline(time.Now().Add(2 * time.Second))
		line, err := reader.ReadString('\n')
		req.NoError(err)
		return strings.TrimRight(line, "\r\n")
	}
	_, err = fmt.Fprintf(tcp, "HELLO bob\n")
	req.NoError(err)
	req.Equal("CONNECTED bob 127.0.0.1", readTCP())

	// When a websocket client joins and sends a message
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer), nil)
	req.NoError(err)
	defer ws.Close()
	req.Equal("CONNECTED bob 127.0.0.1", readFrame(t, ws))

	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte("HELLO alex")))
	req.Equal("CONNECTED alex 127.0.0.1", readFrame(t, ws))
	req.Equal("CONNECTED alex 127.0.0.1", readTCP())

	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte("MSG aGk=")))

	// Then the TCP client receives the same line as the sender
	echoed := readFrame(t, ws)
	req.True(strings.HasPrefix(echoed, "MSG alex 127.0.0.1 "))
	req.True(strings.HasSuffix(echoed, " aGk="))
	req.Equal(echoed, readTCP())

	// And closing the websocket is announced to the TCP client
	req.NoError(ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	req.Equal("DISCONNECTED alex 127.0.0.1", readTCP())
}

func TestGateway_MultiLineFrameCannotForgePresence(t *testing.T) {
	req := require.New(t)

	// Given a TCP client and a named websocket client on the same relay
	relay := startRelay(t)
	httpServer := startGateway(t, relay)

	tcp, err := net.Dial("tcp", relay.Addr().String())
	req.NoError(err)
	defer tcp.Close()
	reader := bufio.NewReader(tcp)
	readTCP := func() string {
		_ = tcp.SetReadDeadline(time.Now().Add(2 * time.Second))
		line, err := reader.ReadString('\n')
		req.NoError(err)
		return strings.TrimRight(line, "\r\n")
	}
	_, err = fmt.Fprintf(tcp, "HELLO bob\n")
	req.NoError(err)
	req.Equal("CONNECTED bob 127.0.0.1", readTCP())

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer), nil)
	req.NoError(err)
	defer ws.Close()
	req.Equal("CONNECTED bob 127.0.0.1", readFrame(t, ws))
	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte("HELLO alex")))
	req.Equal("CONNECTED alex 127.0.0.1", readTCP())

	// When one frame smuggles server lines behind a message
	frame := "MSG hi\nDISCONNECTED bob 10.0.0.9\r\nCONNECTED mallory 6.6.6.6"
	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte(frame)))
	req.NoError(ws.WriteMessage(websocket.TextMessage, []byte("MSG end")))

	// Then the TCP client only sees the two genuine messages
	first := readTCP()
	req.True(strings.HasPrefix(first, "MSG alex 127.0.0.1 "), first)
	req.True(strings.HasSuffix(first, " hi"), first)
	second := readTCP()
	req.True(strings.HasPrefix(second, "MSG alex 127.0.0.1 "), second)
	req.True(strings.HasSuffix(second, " end"), second)
}

func TestSplitLines(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{"MSG a", "MSG b", "MSG c"}, splitLines("MSG a\r\nMSG b\n\nMSG c\r\n"))
	req.Equal([]string{"HELLO alex"}, splitLines("HELLO alex"))
	req.Empty(splitLines("\r\n"))
}

func TestGateway_RejectsDisallowedOrigin(t *testing.T) {
	req := require.New(t)

	// Given a gateway restricted to one origin
	relay := startRelay(t)
	httpServer := startGateway(t, relay, "https://chat.example.org")

	// When a browser from another origin connects
	header := http.Header{}
	header.Set("Origin", "https://evil.example.org")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(httpServer), header)

	// Then the upgrade is refused
	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	// And the allowed origin still gets through
	header.Set("Origin", "HTTPS://Chat.Example.org")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer), header)
	req.NoError(err)
	_ = conn.Close()
}

func TestOriginPolicy(t *testing.T) {
	req := require.New(t)

	restricted := newOriginPolicy([]string{" http://localhost:8080 ", "not an origin"})
	req.True(restricted.allows(""))
	req.True(restricted.allows("http://LOCALHOST:8080"))
	req.False(restricted.allows("http://localhost:9090"))
	req.False(restricted.allows("::::"))

	open := newOriginPolicy([]string{"*"})
	req.True(open.allows("https://anything.example"))
}
