package repo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Command buffers field-level mutations for one entry into a change set and
// submits them to the commit pipeline on Execute. Per-type edit commands
// wrap a Command with typed setters; nothing is read or written until
// Execute runs.
type Command[S any] struct {
	id       string
	action   Action
	actor    *Actor
	changes  *ChangeSet[S]
	exec     func(ctx context.Context, gen Generator[S]) *Commit[S]
	clone    func(S) (S, error)
	executed atomic.Bool
}

func newCommand[S, D any](p *pipeline[S, D], id string, action Action, actor *Actor) *Command[S] {
	return &Command[S]{
		id:      id,
		action:  action,
		actor:   actor,
		changes: NewChangeSet[S](),
		exec: func(ctx context.Context, gen Generator[S]) *Commit[S] {
			return p.submit(ctx, id, action, actor, gen)
		},
		clone: func(s S) (S, error) {
			data, err := p.codec.Marshal(s)
			if err != nil {
				var zero S
				return zero, err
			}
			return p.codec.Unmarshal(data)
		},
	}
}

// ID returns the entry id the command operates on. For creates this is the
// server-assigned id, available before Execute.
func (c *Command[S]) ID() string { return c.id }

// Action returns the command's update kind.
func (c *Command[S]) Action() Action { return c.action }

// Add buffers a named mutation.
func (c *Command[S]) Add(label string, fn Mutator[S]) {
	c.changes.Add(label, fn)
}

// Execute submits the buffered change set to the commit pipeline and
// returns the pending commit. A command executes at most once.
func (c *Command[S]) Execute(ctx context.Context) *Commit[S] {
	if !c.executed.CompareAndSwap(false, true) {
		commit := newCommit(newUpdateContext[S](c.id, "", c.actor, c.action, nil, 0))
		commit.fail(errors.New("command already executed"))
		return commit
	}
	return c.exec(ctx, func(genCtx context.Context, update *UpdateContext[S]) (S, error) {
		base, err := c.base(genCtx, update)
		if err != nil {
			return base, err
		}
		return c.changes.Apply(base)
	})
}

// base resolves the snapshot the change set applies to: an empty record for
// creates, a deep copy of the original for edits so the stored snapshot is
// never aliased by mutators.
func (c *Command[S]) base(ctx context.Context, update *UpdateContext[S]) (S, error) {
	if c.action == ActionCreate {
		var zero S
		return zero, nil
	}
	original, err := update.Original(ctx)
	if err != nil {
		return original, err
	}
	copied, err := c.clone(original)
	if err != nil {
		var zero S
		return zero, fmt.Errorf("copying original snapshot: %w", err)
	}
	return copied, nil
}
