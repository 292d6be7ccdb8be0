// Package repo implements a generic document repository: semi-structured
// records keyed by string identifiers, read through an invalidating cache and
// written through a transactional commit pipeline with pre-commit validation
// hooks, post-commit notification hooks, and an optional version history.
//
// The package is agnostic to the storage backend. Concrete engines (memory,
// sqlite, postgres) live under internal/infra/storage; each entry type of the
// catalog instantiates its own Repository with a storage record type, a codec,
// and a domain adapter.
package repo
