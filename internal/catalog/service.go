package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tcat-tamu/trc-sub000/internal/config"
	"github.com/tcat-tamu/trc-sub000/internal/infra/storage"
	"github.com/tcat-tamu/trc-sub000/internal/infra/versions"
	"github.com/tcat-tamu/trc-sub000/pkg/catalog"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// ServiceOptions carries the injectable collaborators of a Service. Zero
// values fall back to no-op observability and an empty type registry.
type ServiceOptions struct {
	Metrics repo.MetricsRecorder
	Logger  repo.Logger
	// RelationshipTypes seeds the registry before any commit runs.
	RelationshipTypes []catalog.RelationshipType
}

// Service exposes typed CRUD entry points over the three catalog
// repositories. All repositories share one I/O pool and the configured
// storage and version backends; the service owns their lifecycle.
type Service struct {
	cfg      config.Config
	provider *storage.Provider
	pool     *repo.IOPool

	works         *repo.Repository[WorkRecord, catalog.Work]
	relationships *repo.Repository[RelationshipRecord, catalog.Relationship]
	accounts      *repo.Repository[AccountRecord, catalog.Account]

	relTypes *catalog.RelationshipTypeRegistry
}

// NewService opens the configured backends and wires the catalog
// repositories with their validation hooks.
func NewService(ctx context.Context, cfg config.Config, opts ServiceOptions) (*Service, error) {
	provider, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		provider: provider,
		pool:     repo.NewIOPool(cfg.IOWorkers, cfg.IOQueue),
		relTypes: catalog.NewRelationshipTypeRegistry(),
	}
	for _, t := range opts.RelationshipTypes {
		if err := s.relTypes.Register(t); err != nil {
			s.shutdown(ctx)
			return nil, err
		}
	}

	s.works, err = openRepository(ctx, s, cfg, opts, workSchema, "work_versions", adaptWork)
	if err != nil {
		s.shutdown(ctx)
		return nil, err
	}
	s.relationships, err = openRepository(ctx, s, cfg, opts, relationshipSchema, "relationship_versions", adaptRelationship)
	if err != nil {
		s.shutdown(ctx)
		return nil, err
	}
	s.accounts, err = openRepository(ctx, s, cfg, opts, accountSchema, "account_versions", adaptAccount)
	if err != nil {
		s.shutdown(ctx)
		return nil, err
	}

	s.relationships.AddPreCommitHook(relationshipTypeHook(s.relTypes))
	s.relationships.AddPreCommitHook(relationshipEndpointsHook(s.resolveEntry))
	s.accounts.AddPreCommitHook(accountLoginHook())

	return s, nil
}

// openRepository builds one typed repository over the service's shared
// backends.
func openRepository[S, D any](ctx context.Context, s *Service, cfg config.Config, opts ServiceOptions, schemaFn func() (*repo.Schema, error), versionTable string, adapter repo.Adapter[S, D]) (*repo.Repository[S, D], error) {
	schema, err := schemaFn()
	if err != nil {
		return nil, err
	}
	engine, err := s.provider.Engine(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("open engine for %s: %w", schema.ID(), err)
	}
	store, err := versions.Open(ctx, cfg, versionTable)
	if err != nil {
		return nil, fmt.Errorf("open version store for %s: %w", schema.ID(), err)
	}
	return repo.New(repo.Options[S, D]{
		Schema:      schema,
		Engine:      engine,
		Adapter:     adapter,
		Versions:    store,
		Pool:        s.pool,
		Metrics:     opts.Metrics,
		Logger:      opts.Logger,
		CacheSize:   cfg.CacheSize,
		CacheTTL:    cfg.CacheTTL,
		PageSize:    cfg.PageSize,
		LoadTimeout: cfg.LoadTimeout,
	})
}

// resolveEntry reports whether an id names a live entry of any catalog
// type.
func (s *Service) resolveEntry(ctx context.Context, entryID string) error {
	if _, err := s.works.Get(ctx, entryID); err == nil {
		return nil
	} else if !repo.IsNotFound(err) {
		return err
	}
	if _, err := s.accounts.Get(ctx, entryID); err == nil {
		return nil
	} else if !repo.IsNotFound(err) {
		return err
	}
	_, err := s.relationships.Get(ctx, entryID)
	return err
}

func (s *Service) shutdown(ctx context.Context) {
	if s.pool != nil {
		_ = s.pool.Stop(ctx)
	}
	if s.provider != nil {
		_ = s.provider.Close()
	}
}

// Close stops the shared I/O pool and the storage backends. In-flight
// commits are given until ctx expires to drain.
func (s *Service) Close(ctx context.Context) error {
	poolErr := s.pool.Stop(ctx)
	closeErr := s.provider.Close()
	return errors.Join(poolErr, closeErr)
}

// RegisterRelationshipType adds a relationship type to the registry.
func (s *Service) RegisterRelationshipType(t catalog.RelationshipType) error {
	return s.relTypes.Register(t)
}

// RelationshipTypes lists the registered relationship types.
func (s *Service) RelationshipTypes() []catalog.RelationshipType {
	return s.relTypes.List()
}

// CreateWork starts a buffered work creation with a server-assigned id.
func (s *Service) CreateWork(actor *repo.Actor) *WorkEditor {
	return newWorkEditor(s.works.Create(actor), s.works.IDs())
}

// EditWork starts a buffered edit of an existing work.
func (s *Service) EditWork(actor *repo.Actor, id string) *WorkEditor {
	return newWorkEditor(s.works.Edit(actor, id), s.works.IDs())
}

// GetWork returns the work with the given id.
func (s *Service) GetWork(ctx context.Context, id string) (catalog.Work, error) {
	return s.works.Get(ctx, id)
}

// ListWorks iterates every live work in id order.
func (s *Service) ListWorks(ctx context.Context) *repo.Iterator[catalog.Work] {
	return s.works.ListAll(ctx)
}

// DeleteWork removes a work and waits for the removal to become durable.
func (s *Service) DeleteWork(ctx context.Context, actor *repo.Actor, id string) error {
	_, err := s.works.Delete(ctx, actor, id).Wait(ctx)
	return err
}

// WorkHistory lists the committed versions of a work.
func (s *Service) WorkHistory(ctx context.Context, id string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	return history(ctx, s.works, id, filter)
}

// WorkVersion fetches one historical snapshot of a work.
func (s *Service) WorkVersion(ctx context.Context, id, versionID string) (repo.VersionedRecord, error) {
	return versionOf(ctx, s.works, id, versionID)
}

// CreateRelationship starts a buffered relationship creation.
func (s *Service) CreateRelationship(actor *repo.Actor) *RelationshipEditor {
	return newRelationshipEditor(s.relationships.Create(actor), actor)
}

// EditRelationship starts a buffered edit of an existing relationship.
func (s *Service) EditRelationship(actor *repo.Actor, id string) *RelationshipEditor {
	return newRelationshipEditor(s.relationships.Edit(actor, id), actor)
}

// GetRelationship returns the relationship with the given id.
func (s *Service) GetRelationship(ctx context.Context, id string) (catalog.Relationship, error) {
	return s.relationships.Get(ctx, id)
}

// ListRelationships iterates every live relationship in id order.
func (s *Service) ListRelationships(ctx context.Context) *repo.Iterator[catalog.Relationship] {
	return s.relationships.ListAll(ctx)
}

// DeleteRelationship removes a relationship and waits for durability.
func (s *Service) DeleteRelationship(ctx context.Context, actor *repo.Actor, id string) error {
	_, err := s.relationships.Delete(ctx, actor, id).Wait(ctx)
	return err
}

// RelationshipHistory lists the committed versions of a relationship.
func (s *Service) RelationshipHistory(ctx context.Context, id string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	return history(ctx, s.relationships, id, filter)
}

// CreateAccount starts a buffered account creation.
func (s *Service) CreateAccount(actor *repo.Actor) *AccountEditor {
	return newAccountEditor(s.accounts.Create(actor))
}

// EditAccount starts a buffered edit of an existing account.
func (s *Service) EditAccount(actor *repo.Actor, id string) *AccountEditor {
	return newAccountEditor(s.accounts.Edit(actor, id))
}

// GetAccount returns the account with the given id.
func (s *Service) GetAccount(ctx context.Context, id string) (catalog.Account, error) {
	return s.accounts.Get(ctx, id)
}

// ListAccounts iterates every live account in id order.
func (s *Service) ListAccounts(ctx context.Context) *repo.Iterator[catalog.Account] {
	return s.accounts.ListAll(ctx)
}

// DeleteAccount removes an account and waits for durability.
func (s *Service) DeleteAccount(ctx context.Context, actor *repo.Actor, id string) error {
	_, err := s.accounts.Delete(ctx, actor, id).Wait(ctx)
	return err
}

// AccountHistory lists the committed versions of an account.
func (s *Service) AccountHistory(ctx context.Context, id string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	return history(ctx, s.accounts, id, filter)
}

func history[S, D any](ctx context.Context, r *repo.Repository[S, D], id string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	store, ok := r.Versions()
	if !ok {
		return nil, repo.UnsupportedError{Op: "history", Reason: "version store disabled"}
	}
	return store.List(ctx, id, filter)
}

func versionOf[S, D any](ctx context.Context, r *repo.Repository[S, D], id, versionID string) (repo.VersionedRecord, error) {
	store, ok := r.Versions()
	if !ok {
		return repo.VersionedRecord{}, repo.UnsupportedError{Op: "history", Reason: "version store disabled"}
	}
	return store.Get(ctx, id, versionID)
}
