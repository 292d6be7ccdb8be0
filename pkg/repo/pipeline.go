package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Generator produces the modified storage record for one update. Edit
// generators usually read the original snapshot from the context; create
// generators start from an empty record.
type Generator[S any] func(ctx context.Context, update *UpdateContext[S]) (S, error)

// pipeline orchestrates one repository's writes: generate the modified
// snapshot, fan pre-commit hooks out and let any of them veto, persist on
// the I/O pool, append a version snapshot, invalidate the cache, then fan
// post-commit hooks out without awaiting them.
type pipeline[S, D any] struct {
	schema      *Schema
	engine      Engine
	codec       Codec[S]
	ids         IDSource
	cache       *recordCache[D]
	versions    VersionStore
	pre         *hookRegistry[S]
	post        *hookRegistry[S]
	pool        *IOPool
	metrics     MetricsRecorder
	log         Logger
	clock       func() time.Time
	loadTimeout time.Duration
	hardDelete  bool
}

// submit starts the pipeline for one update and returns immediately with
// the pending commit. There is no cross-update ordering for one id: two
// concurrent edits may both read the same original and the later persist
// wins at the row level.
func (p *pipeline[S, D]) submit(ctx context.Context, entryID string, action Action, actor *Actor, gen Generator[S]) *Commit[S] {
	var load func(context.Context) (S, error)
	if action != ActionCreate {
		load = func(loadCtx context.Context) (S, error) {
			return p.loadRecord(loadCtx, entryID)
		}
	}
	update := newUpdateContext(entryID, p.ids.Next(), actor, action, load, p.loadTimeout)
	commit := newCommit(update)

	go p.run(ctx, commit, gen)
	return commit
}

func (p *pipeline[S, D]) run(ctx context.Context, commit *Commit[S], gen Generator[S]) {
	update := commit.Update()
	started := p.clock()
	operation := "commit_" + string(update.Action())

	modified, err := gen(ctx, update)
	if err != nil {
		p.metrics.Observe(ctx, operation, false, p.clock().Sub(started))
		commit.fail(err)
		return
	}
	update.setModified(modified)

	commit.setState(StateHooksRunning)
	if err := p.runPreCommitHooks(ctx, update); err != nil {
		update.AddError(err.Error())
		p.metrics.Observe(ctx, operation, false, p.clock().Sub(started))
		commit.fail(ValidationError{ID: update.EntryID(), UpdateID: update.UpdateID(), Err: err})
		return
	}

	commit.setState(StatePersisting)
	data, persistErr := p.persist(ctx, update, modified)
	if persistErr != nil {
		p.metrics.Observe(ctx, operation, false, p.clock().Sub(started))
		commit.fail(persistErr)
		return
	}

	update.setCommittedAt(p.clock())
	p.appendVersion(ctx, update, data)
	p.cache.Invalidate(update.EntryID())
	p.schedulePostCommitHooks(update)
	p.metrics.Observe(ctx, operation, true, p.clock().Sub(started))
	commit.resolve(modified)
}

// runPreCommitHooks fans every registered pre-commit hook out and waits for
// all of them. The first error vetoes the write; nothing has been persisted
// at that point.
func (p *pipeline[S, D]) runPreCommitHooks(ctx context.Context, update *UpdateContext[S]) error {
	hooks := p.pre.snapshot()
	if len(hooks) == 0 {
		return nil
	}
	group, groupCtx := errgroup.WithContext(ctx)
	for _, h := range hooks {
		hook := h
		group.Go(func() error {
			return hook(groupCtx, update)
		})
	}
	return group.Wait()
}

// persist serializes the modified snapshot and applies the action-specific
// row operation on the I/O pool, never on the pipeline goroutine. It
// returns the serialized payload for version capture.
func (p *pipeline[S, D]) persist(ctx context.Context, update *UpdateContext[S], modified S) ([]byte, error) {
	entryID, updateID := update.EntryID(), update.UpdateID()
	data, err := p.codec.Marshal(modified)
	if err != nil {
		return nil, PersistenceError{ID: entryID, UpdateID: updateID, Err: fmt.Errorf("serialize: %w", err)}
	}

	done := make(chan error, 1)
	task := func() {
		now := p.clock()
		row := Row{ID: entryID, Data: data, Created: now, Modified: now}
		switch update.Action() {
		case ActionCreate:
			done <- p.engine.InsertRow(ctx, row)
		case ActionUpdate:
			done <- p.engine.UpdateRow(ctx, row)
		case ActionDelete:
			if _, soft := p.schema.RemovedColumn(); soft && !p.hardDelete {
				done <- p.engine.MarkRemoved(ctx, entryID, now)
			} else {
				done <- p.engine.DeleteRow(ctx, entryID)
			}
		default:
			done <- fmt.Errorf("unknown action %q", update.Action())
		}
	}
	if err := p.pool.Submit(task); err != nil {
		return nil, PersistenceError{ID: entryID, UpdateID: updateID, Err: err}
	}
	if err := <-done; err != nil {
		return nil, PersistenceError{ID: entryID, UpdateID: updateID, Err: err}
	}
	return data, nil
}

// appendVersion records one snapshot for the committed update. The commit
// is already durable, so failures are logged on the context instead of
// failing the caller.
func (p *pipeline[S, D]) appendVersion(ctx context.Context, update *UpdateContext[S], data []byte) {
	if p.versions == nil {
		return
	}
	at, _ := update.CommittedAt()
	meta := VersionMeta{
		EntryID:   update.EntryID(),
		VersionID: update.UpdateID(),
		Action:    update.Action(),
		CreatedAt: at,
	}
	if actor := update.Actor(); actor != nil {
		meta.Actor = actor.ID
	}
	if _, err := p.versions.Append(ctx, meta, data); err != nil {
		update.AddError(fmt.Sprintf("version append: %v", err))
		p.metrics.Count(ctx, EventVersionAppendFailure)
		p.log.Log(ctx, "version_append_failed", map[string]any{
			"entry_id":  update.EntryID(),
			"update_id": update.UpdateID(),
			"error":     err.Error(),
		})
	}
}

// schedulePostCommitHooks fans post-commit hooks out on the I/O pool. They
// are not awaited by the commit's future; failures are appended to the
// update's error log and logged.
func (p *pipeline[S, D]) schedulePostCommitHooks(update *UpdateContext[S]) {
	hooks := p.post.snapshot()
	for _, h := range hooks {
		hook := h
		err := p.pool.Submit(func() {
			ctx := context.Background()
			if err := hook(ctx, update); err != nil {
				update.AddError(err.Error())
				p.metrics.Count(ctx, EventHookFailure)
				p.log.Log(ctx, "post_commit_hook_failed", map[string]any{
					"entry_id":  update.EntryID(),
					"update_id": update.UpdateID(),
					"error":     err.Error(),
				})
			}
		})
		if err != nil {
			update.AddError(fmt.Sprintf("post-commit hook not scheduled: %v", err))
		}
	}
}

// loadRecord reads and deserializes one live row.
func (p *pipeline[S, D]) loadRecord(ctx context.Context, id string) (S, error) {
	var zero S
	row, err := p.engine.LoadRow(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoRow) || IsNotFound(err) {
			return zero, NotFoundError{ID: id}
		}
		return zero, fmt.Errorf("loading entry %q: %w", id, err)
	}
	record, err := p.codec.Unmarshal(row.Data)
	if err != nil {
		return zero, fmt.Errorf("decoding entry %q: %w", id, err)
	}
	return record, nil
}
