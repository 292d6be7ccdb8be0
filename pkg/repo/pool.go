package repo

import (
	"context"
	"errors"
	"sync"
)

// IOPool runs persistence work on goroutines dedicated to storage I/O so
// commits never execute on the caller's goroutine. One pool is typically
// shared by every repository in a process.
type IOPool struct {
	queue  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewIOPool starts a pool with the given number of workers and queue depth.
// Non-positive arguments fall back to sensible defaults.
func NewIOPool(workers, depth int) *IOPool {
	if workers <= 0 {
		workers = 4
	}
	if depth <= 0 {
		depth = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &IOPool{
		queue:  make(chan func(), depth),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.loop()
	}
	return p
}

func (p *IOPool) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.queue:
			task()
		}
	}
}

// Submit enqueues a task, blocking while the queue is full. It fails once
// the pool has been stopped.
func (p *IOPool) Submit(task func()) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return errors.New("io pool stopped")
	}
	select {
	case p.queue <- task:
		return nil
	case <-p.ctx.Done():
		return errors.New("io pool stopped")
	}
}

// Stop signals workers to halt and waits for them, bounded by ctx. Queued
// tasks not yet started are dropped.
func (p *IOPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
