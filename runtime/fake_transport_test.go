package runtime

import (
	"fmt"
	"io"
	"sync"
)

// fakeTransport records written lines and serves queued reads.
type fakeTransport struct {
	mu        sync.Mutex
	host      string
	written   []string
	failWrite bool
	closed    bool
	reads     chan string
}

func newFakeTransport(host string) *fakeTransport {
	return &fakeTransport{host: host, reads: make(chan string, 16)}
}

func (f *fakeTransport) ReadLine() (string, error) {
	line, ok := <-f.reads
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (f *fakeTransport) WriteLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return fmt.Errorf("broken pipe")
	}
	f.written = append(f.written, line)
	return nil
}

func (f *fakeTransport) RemoteHost() string { return f.host }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.reads)
	}
	return nil
}

func (f *fakeTransport) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func (f *fakeTransport) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
