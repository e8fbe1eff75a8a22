package runtime

import (
	"bufio"
	"chat-relay/errors"
	goerrors "errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Transport carries protocol lines for one peer. ReadLine is only called by
// the connection worker; WriteLine calls are serialized by Connection.
type Transport interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	// RemoteHost is the peer address without its port.
	RemoteHost() string
	Close() error
}

type tcpTransport struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writer       *bufio.Writer
	writeTimeout time.Duration
}

// NewTCPTransport frames a stream connection into newline terminated lines.
// Lines longer than maxLineBytes end the connection.
func NewTCPTransport(conn net.Conn, maxLineBytes int, writeTimeout time.Duration) Transport {
	if maxLineBytes <= 0 {
		maxLineBytes = bufio.MaxScanTokenSize
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(4096, maxLineBytes)), maxLineBytes)
	return &tcpTransport{
		conn:         conn,
		scanner:      scanner,
		writer:       bufio.NewWriter(conn),
		writeTimeout: writeTimeout,
	}
}

func (t *tcpTransport) ReadLine() (string, error) {
	if t.scanner.Scan() {
		return t.scanner.Text(), nil
	}
	err := t.scanner.Err()
	switch {
	case err == nil:
		return "", io.EOF
	case goerrors.Is(err, bufio.ErrTooLong):
		return "", fmt.Errorf("%w: %w", errors.ErrLineTooLong, err)
	default:
		return "", err
	}
}

func (t *tcpTransport) WriteLine(line string) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	if _, err := t.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return t.writer.Flush()
}

func (t *tcpTransport) RemoteHost() string {
	return HostOf(t.conn.RemoteAddr())
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

// HostOf strips the port from a network address.
func HostOf(addr net.Addr) string {
	if addr == nil {
		return nullAddress
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
