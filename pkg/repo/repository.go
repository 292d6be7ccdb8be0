package repo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Options configures a Repository. Schema, Engine, and Adapter are
// mandatory; everything else has a default.
type Options[S, D any] struct {
	Schema  *Schema
	Engine  Engine
	Codec   Codec[S]
	Adapter Adapter[S, D]
	IDs     IDSource
	// Versions enables the append-only snapshot log. Nil disables history.
	Versions VersionStore
	Pool     *IOPool
	Metrics  MetricsRecorder
	Logger   Logger

	CacheSize int
	CacheTTL  time.Duration
	PageSize  int
	// LoadTimeout bounds the original-snapshot load inside an update
	// context.
	LoadTimeout time.Duration
	// AllowClientIDs permits CreateWithID; when false it fails with an
	// UnsupportedError.
	AllowClientIDs bool
	// HardDelete drops rows even when the schema has a removed column.
	HardDelete bool

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Repository is a generic document repository over one entry type. Reads go
// through the invalidating record cache; writes run through the commit
// pipeline. S is the private storage record, D the immutable domain record
// handed to callers.
type Repository[S, D any] struct {
	schema   *Schema
	engine   Engine
	codec    Codec[S]
	adapter  Adapter[S, D]
	ids      IDSource
	cache    *recordCache[D]
	pipeline *pipeline[S, D]
	versions VersionStore
	pageSize int
	allowIDs bool
	ownPool  bool
	pool     *IOPool
}

// New constructs a repository from the given options.
func New[S, D any](opts Options[S, D]) (*Repository[S, D], error) {
	if opts.Schema == nil {
		return nil, errors.New("repo: schema required")
	}
	if opts.Engine == nil {
		return nil, errors.New("repo: engine required")
	}
	if opts.Adapter == nil {
		return nil, errors.New("repo: adapter required")
	}
	var codec Codec[S] = opts.Codec
	if codec == nil {
		codec = JSONCodec[S]{}
	}
	var ids IDSource = opts.IDs
	if ids == nil {
		ids = UUIDSource{}
	}
	var metrics MetricsRecorder = opts.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}
	var logger Logger = opts.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	loadTimeout := opts.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 10 * time.Second
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	pool := opts.Pool
	ownPool := false
	if pool == nil {
		pool = NewIOPool(0, 0)
		ownPool = true
	}

	r := &Repository[S, D]{
		schema:   opts.Schema,
		engine:   opts.Engine,
		codec:    codec,
		adapter:  opts.Adapter,
		ids:      ids,
		versions: opts.Versions,
		pageSize: pageSize,
		allowIDs: opts.AllowClientIDs,
		ownPool:  ownPool,
		pool:     pool,
	}
	r.cache = newRecordCache[D](opts.CacheSize, opts.CacheTTL, metrics, r.loadDomain)
	r.pipeline = &pipeline[S, D]{
		schema:      opts.Schema,
		engine:      opts.Engine,
		codec:       codec,
		ids:         ids,
		cache:       r.cache,
		versions:    opts.Versions,
		pre:         newHookRegistry[S](),
		post:        newHookRegistry[S](),
		pool:        pool,
		metrics:     metrics,
		log:         logger,
		clock:       clock,
		loadTimeout: loadTimeout,
		hardDelete:  opts.HardDelete,
	}
	return r, nil
}

// Close stops the repository's I/O pool when the repository owns it. Pools
// passed in via Options are left to their owner.
func (r *Repository[S, D]) Close(ctx context.Context) error {
	if !r.ownPool {
		return nil
	}
	return r.pool.Stop(ctx)
}

// loadDomain is the cache loader: read the live row, decode it, and
// materialize the domain record through the adapter.
func (r *Repository[S, D]) loadDomain(ctx context.Context, id string) (D, error) {
	var zero D
	record, err := r.pipeline.loadRecord(ctx, id)
	if err != nil {
		return zero, err
	}
	domain, err := r.adapter(record)
	if err != nil {
		return zero, fmt.Errorf("materializing entry %q: %w", id, err)
	}
	return domain, nil
}

// Get returns the domain record for id, loading and caching it on a miss.
// Absent or removed rows fail with NotFoundError.
func (r *Repository[S, D]) Get(ctx context.Context, id string) (D, error) {
	return r.cache.Get(ctx, id)
}

// GetMany resolves each id via Get, failing on the first miss.
func (r *Repository[S, D]) GetMany(ctx context.Context, ids ...string) ([]D, error) {
	out := make([]D, 0, len(ids))
	for _, id := range ids {
		d, err := r.cache.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ListAll returns a forward-only iterator over every live entry in id
// order.
func (r *Repository[S, D]) ListAll(ctx context.Context) *Iterator[D] {
	return newIterator(ctx, r.pageSize, func(fetchCtx context.Context, offset, limit int) ([]D, error) {
		rows, err := r.engine.ListRows(fetchCtx, offset, limit)
		if err != nil {
			return nil, err
		}
		out := make([]D, 0, len(rows))
		for _, row := range rows {
			record, err := r.codec.Unmarshal(row.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding entry %q: %w", row.ID, err)
			}
			domain, err := r.adapter(record)
			if err != nil {
				return nil, fmt.Errorf("materializing entry %q: %w", row.ID, err)
			}
			out = append(out, domain)
		}
		return out, nil
	})
}

// Create starts a buffered create command with a server-assigned id.
func (r *Repository[S, D]) Create(actor *Actor) *Command[S] {
	return newCommand(r.pipeline, r.ids.Next(), ActionCreate, actor)
}

// CreateWithID starts a create command for a client-chosen id. It fails
// when the repository is not configured to accept client ids.
func (r *Repository[S, D]) CreateWithID(actor *Actor, id string) (*Command[S], error) {
	if !r.allowIDs {
		return nil, UnsupportedError{Op: "create", Reason: "client-supplied ids not accepted by this schema"}
	}
	return newCommand(r.pipeline, id, ActionCreate, actor), nil
}

// Edit starts a buffered edit command over the entry's current state.
func (r *Repository[S, D]) Edit(actor *Actor, id string) *Command[S] {
	return newCommand(r.pipeline, id, ActionUpdate, actor)
}

// Delete removes the entry: soft when the schema has a removed column,
// hard otherwise. The returned commit resolves once the removal is
// durable.
func (r *Repository[S, D]) Delete(ctx context.Context, actor *Actor, id string) *Commit[S] {
	return r.pipeline.submit(ctx, id, ActionDelete, actor, func(genCtx context.Context, update *UpdateContext[S]) (S, error) {
		// load so removals of absent entries fail with NotFound before any
		// hook or storage mutation runs
		return update.Original(genCtx)
	})
}

// AddPreCommitHook registers a veto-capable hook run before persistence.
// The returned disposer unregisters it.
func (r *Repository[S, D]) AddPreCommitHook(h Hook[S]) func() {
	return r.pipeline.pre.add(h)
}

// AddPostCommitHook registers a best-effort notification hook run after a
// commit is durable. The returned disposer unregisters it.
func (r *Repository[S, D]) AddPostCommitHook(h Hook[S]) func() {
	return r.pipeline.post.add(h)
}

// Versions exposes the configured version store, if any.
func (r *Repository[S, D]) Versions() (VersionStore, bool) {
	return r.versions, r.versions != nil
}

// Invalidate drops the cached domain record for id.
func (r *Repository[S, D]) Invalidate(id string) {
	r.cache.Invalidate(id)
}

// IDs exposes the repository's identifier source, shared with per-type edit
// commands for server-assigned child ids.
func (r *Repository[S, D]) IDs() IDSource { return r.ids }

// Schema returns the repository's storage schema.
func (r *Repository[S, D]) Schema() *Schema { return r.schema }
