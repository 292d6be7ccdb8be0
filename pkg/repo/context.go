package repo

import (
	"context"
	"errors"
	"sync"
	"time"
)

// UpdateContext is the transactional record of one in-flight create, edit,
// or delete. It carries the actor and action kind, lazily loads the original
// snapshot for edits, accumulates the modified snapshot, and collects
// non-fatal errors contributed by hooks. Hooks receive the context and may
// read any of it; only AddError mutates it after the pipeline starts.
type UpdateContext[S any] struct {
	entryID  string
	updateID string
	actor    *Actor
	action   Action

	loadOriginal func(context.Context) (S, error)
	loadTimeout  time.Duration
	loadOnce     sync.Once
	original     S
	originalErr  error

	mu          sync.Mutex
	modified    S
	modifiedSet bool
	committedAt time.Time
	committed   bool
	errlog      []string
}

func newUpdateContext[S any](entryID, updateID string, actor *Actor, action Action, load func(context.Context) (S, error), timeout time.Duration) *UpdateContext[S] {
	return &UpdateContext[S]{
		entryID:      entryID,
		updateID:     updateID,
		actor:        actor,
		action:       action,
		loadOriginal: load,
		loadTimeout:  timeout,
	}
}

// EntryID returns the identifier of the entry being updated.
func (c *UpdateContext[S]) EntryID() string { return c.entryID }

// UpdateID returns the randomly generated identifier of this update.
func (c *UpdateContext[S]) UpdateID() string { return c.updateID }

// Actor returns who initiated the update; nil for system-initiated ones.
func (c *UpdateContext[S]) Actor() *Actor { return c.actor }

// Action returns the update kind.
func (c *UpdateContext[S]) Action() Action { return c.action }

// Original returns the entry's snapshot as it stood before this update.
// The first call performs the load, bounded by the configured timeout;
// subsequent calls return the cached outcome. Creates have no original and
// fail with ErrNoOriginal.
func (c *UpdateContext[S]) Original(ctx context.Context) (S, error) {
	if c.loadOriginal == nil {
		var zero S
		return zero, ErrNoOriginal
	}
	c.loadOnce.Do(func() {
		loadCtx, cancel := context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
		c.original, c.originalErr = c.loadOriginal(loadCtx)
		if c.originalErr != nil && errors.Is(c.originalErr, context.DeadlineExceeded) {
			c.originalErr = TimeoutError{ID: c.entryID, Op: "loading original snapshot", Err: c.originalErr}
		}
	})
	return c.original, c.originalErr
}

// Modified returns the snapshot this update intends to persist; ok is false
// before the generator has run.
func (c *UpdateContext[S]) Modified() (S, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modified, c.modifiedSet
}

func (c *UpdateContext[S]) setModified(s S) {
	c.mu.Lock()
	c.modified = s
	c.modifiedSet = true
	c.mu.Unlock()
}

// CommittedAt returns the completion timestamp; ok is false until the
// update has been durably persisted.
func (c *UpdateContext[S]) CommittedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committedAt, c.committed
}

func (c *UpdateContext[S]) setCommittedAt(at time.Time) {
	c.mu.Lock()
	c.committedAt = at
	c.committed = true
	c.mu.Unlock()
}

// AddError appends a non-fatal error message to the update's log. Hook
// failures land here; they never roll back a committed write.
func (c *UpdateContext[S]) AddError(msg string) {
	c.mu.Lock()
	c.errlog = append(c.errlog, msg)
	c.mu.Unlock()
}

// Errors returns a copy of the accumulated non-fatal error messages.
func (c *UpdateContext[S]) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errlog))
	copy(out, c.errlog)
	return out
}
