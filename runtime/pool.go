package runtime

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool runs workers with bounded concurrency. Submissions beyond the bound
// wait for a slot; Shutdown cancels the ones still waiting.
type Pool struct {
	log     *slog.Logger
	sem     *semaphore.Weighted
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Int64
	queued  atomic.Int64
}

func NewPool(ctx context.Context, log *slog.Logger, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		log:    log,
		sem:    semaphore.NewWeighted(int64(size)),
		ctx:    poolCtx,
		cancel: cancel,
	}
}

// Submit schedules the worker. If the pool is shut down before the worker
// got a slot, onCancel runs instead of the worker.
func (p *Pool) Submit(worker contract.Worker, onCancel func()) {
	p.wg.Add(1)
	p.queued.Add(1)

	go func() {
		defer p.wg.Done()

		err := p.sem.Acquire(p.ctx, 1)
		p.queued.Add(-1)
		if err != nil {
			onCancel()
			return
		}
		defer p.sem.Release(1)
		// Acquire may succeed on an already cancelled context.
		if p.ctx.Err() != nil {
			onCancel()
			return
		}

		p.running.Add(1)
		defer p.running.Add(-1)
		p.run(worker)
	}()
}

func (p *Pool) run(worker contract.Worker) {
	name := contract.GetWorkerName(worker)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Pooled worker panicked", "name", name, "panic", r)
		}
	}()
	if err := worker.Run(p.ctx); err != nil {
		p.log.Debug("Pooled worker returned an error", "name", name, "error", err)
	}
}

// Running is the number of workers holding a slot.
func (p *Pool) Running() int { return int(p.running.Load()) }

// Queued is the number of workers waiting for a slot.
func (p *Pool) Queued() int { return int(p.queued.Load()) }

// Shutdown cancels running workers' context and every queued worker.
func (p *Pool) Shutdown() {
	p.cancel()
}

// Wait blocks until every submitted worker has returned or been cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}
