package repo

import (
	"context"
	"sync/atomic"
)

// CommitState tracks a commit through the pipeline's state machine.
type CommitState int32

const (
	StatePending CommitState = iota
	StateHooksRunning
	StatePersisting
	StateCommitted
	StateFailed
)

// String returns the state name.
func (s CommitState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateHooksRunning:
		return "hooks_running"
	case StatePersisting:
		return "persisting"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Commit is the pending result of one update. It resolves with the
// committed storage record once persistence succeeds, or with an error.
// Abandoning a Commit does not abort a write already handed to the I/O
// pool; cancellation only governs the caller's wait.
type Commit[S any] struct {
	done    chan struct{}
	state   atomic.Int32
	record  S
	err     error
	update  *UpdateContext[S]
}

func newCommit[S any](update *UpdateContext[S]) *Commit[S] {
	return &Commit[S]{done: make(chan struct{}), update: update}
}

// Wait blocks until the commit resolves or ctx is done, returning the
// committed storage record.
func (c *Commit[S]) Wait(ctx context.Context) (S, error) {
	select {
	case <-c.done:
		return c.record, c.err
	case <-ctx.Done():
		var zero S
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the commit has resolved.
func (c *Commit[S]) Done() <-chan struct{} { return c.done }

// State returns the commit's position in the pipeline.
func (c *Commit[S]) State() CommitState { return CommitState(c.state.Load()) }

// Update returns the update context, including any non-fatal errors hooks
// appended to it. Post-commit hook failures surface only here.
func (c *Commit[S]) Update() *UpdateContext[S] { return c.update }

func (c *Commit[S]) setState(s CommitState) { c.state.Store(int32(s)) }

func (c *Commit[S]) resolve(record S) {
	c.record = record
	c.setState(StateCommitted)
	close(c.done)
}

func (c *Commit[S]) fail(err error) {
	c.err = err
	c.setState(StateFailed)
	close(c.done)
}
