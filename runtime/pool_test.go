package runtime

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingWorker struct {
	started chan struct{}
	release chan struct{}
}

func (w *blockingWorker) Run(ctx context.Context) error {
	w.started <- struct{}{}
	select {
	case <-w.release:
	case <-ctx.Done():
	}
	return nil
}

type panickingWorker struct{}

func (panickingWorker) Run(context.Context) error { panic("boom") }

func TestPool_BoundsConcurrency(t *testing.T) {
	req := require.New(t)
	pool := NewPool(context.Background(), slog.Default(), 2)
	worker := &blockingWorker{started: make(chan struct{}, 3), release: make(chan struct{})}

	// Given three workers for two slots
	for range 3 {
		pool.Submit(worker, func() {})
	}

	// Then only two start
	<-worker.started
	<-worker.started
	select {
	case <-worker.started:
		req.Fail("third worker should wait for a slot")
	case <-time.After(100 * time.Millisecond):
	}
	req.Equal(2, pool.Running())
	req.Equal(1, pool.Queued())

	// When one finishes the queued one starts
	worker.release <- struct{}{}
	select {
	case <-worker.started:
	case <-time.After(time.Second):
		req.Fail("queued worker never started")
	}

	close(worker.release)
	pool.Wait()
}

func TestPool_ShutdownCancelsQueued(t *testing.T) {
	req := require.New(t)
	pool := NewPool(context.Background(), slog.Default(), 1)
	worker := &blockingWorker{started: make(chan struct{}, 2), release: make(chan struct{})}
	var cancelled atomic.Int32

	// Given one running and one queued worker
	pool.Submit(worker, func() { cancelled.Add(1) })
	<-worker.started
	pool.Submit(worker, func() { cancelled.Add(1) })

	// When the pool is shut down
	pool.Shutdown()
	pool.Wait()

	// Then the queued worker was cancelled, not run
	req.Equal(int32(1), cancelled.Load())
	req.Len(worker.started, 0)
}

func TestPool_RecoversPanics(t *testing.T) {
	req := require.New(t)
	pool := NewPool(context.Background(), slog.Default(), 1)

	pool.Submit(panickingWorker{}, func() {})
	pool.Wait()

	// The slot was released, another worker can run
	worker := &blockingWorker{started: make(chan struct{}, 1), release: make(chan struct{})}
	close(worker.release)
	pool.Submit(worker, func() {})
	pool.Wait()
	req.Len(worker.started, 1)
}
