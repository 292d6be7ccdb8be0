package catalog

import (
	"fmt"
	"sort"
	"sync"
)

// RelationshipType describes one registered kind of relationship. Directed
// types read Title from source to target and ReverseTitle the other way;
// undirected types ignore ReverseTitle.
type RelationshipType struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ReverseTitle string `json:"reverseTitle,omitempty"`
	Directed     bool   `json:"directed"`
	Description  string `json:"description,omitempty"`
}

// RelationshipTypeRegistry holds the set of relationship types accepted at
// commit time. Safe for concurrent registration and lookup.
type RelationshipTypeRegistry struct {
	mu    sync.RWMutex
	types map[string]RelationshipType
}

// NewRelationshipTypeRegistry returns an empty registry.
func NewRelationshipTypeRegistry() *RelationshipTypeRegistry {
	return &RelationshipTypeRegistry{types: make(map[string]RelationshipType)}
}

// Register adds a type. Duplicate or empty identifiers are rejected.
func (r *RelationshipTypeRegistry) Register(t RelationshipType) error {
	if t.ID == "" {
		return fmt.Errorf("relationship type id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.ID]; ok {
		return fmt.Errorf("relationship type %q already registered", t.ID)
	}
	r.types[t.ID] = t
	return nil
}

// Unregister removes a type, reporting whether it was present.
func (r *RelationshipTypeRegistry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return false
	}
	delete(r.types, id)
	return true
}

// Get looks up a type by id.
func (r *RelationshipTypeRegistry) Get(id string) (RelationshipType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// List returns all registered types ordered by id.
func (r *RelationshipTypeRegistry) List() []RelationshipType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RelationshipType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
