package repo

import (
	"context"
	"sync"
)

// Hook observes or vetoes an update. Pre-commit hooks run before
// persistence and abort the pipeline by returning an error; post-commit
// hooks run after the write is durable and their errors are recorded on the
// update context without failing the commit.
type Hook[S any] func(ctx context.Context, update *UpdateContext[S]) error

// hookRegistry is an instance-owned set of hooks supporting registration
// and removal while hooks are firing. Firing iterates over a snapshot, so a
// hook disposed mid-flight may still observe the in-progress update.
type hookRegistry[S any] struct {
	mu    sync.RWMutex
	seq   int
	hooks map[int]Hook[S]
}

func newHookRegistry[S any]() *hookRegistry[S] {
	return &hookRegistry[S]{hooks: make(map[int]Hook[S])}
}

// add registers the hook and returns its disposer. Disposing twice is a
// no-op.
func (r *hookRegistry[S]) add(h Hook[S]) func() {
	r.mu.Lock()
	r.seq++
	key := r.seq
	r.hooks[key] = h
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.hooks, key)
		r.mu.Unlock()
	}
}

// snapshot returns the currently registered hooks.
func (r *hookRegistry[S]) snapshot() []Hook[S] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Hook[S], 0, len(r.hooks))
	for _, h := range r.hooks {
		out = append(out, h)
	}
	return out
}
