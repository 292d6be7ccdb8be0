package repo

import "fmt"

// Mutator applies one deferred field mutation to a working snapshot.
type Mutator[S any] func(*S) error

// ChangeSet buffers named mutations in insertion order. Applying a change
// set to a snapshot runs every mutator against that snapshot; the same
// change set may be applied to independent base snapshots, each application
// deriving its own result.
type ChangeSet[S any] struct {
	mutations []mutation[S]
}

type mutation[S any] struct {
	label string
	apply Mutator[S]
}

// NewChangeSet returns an empty change set.
func NewChangeSet[S any]() *ChangeSet[S] {
	return &ChangeSet[S]{}
}

// Add appends a named mutator.
func (c *ChangeSet[S]) Add(label string, fn Mutator[S]) {
	c.mutations = append(c.mutations, mutation[S]{label: label, apply: fn})
}

// Len returns the number of buffered mutations.
func (c *ChangeSet[S]) Len() int { return len(c.mutations) }

// Apply runs every mutation against base in insertion order and returns the
// mutated snapshot. The first failing mutation aborts and is identified by
// its label.
func (c *ChangeSet[S]) Apply(base S) (S, error) {
	working := base
	for _, m := range c.mutations {
		if err := m.apply(&working); err != nil {
			return base, fmt.Errorf("applying %q: %w", m.label, err)
		}
	}
	return working, nil
}
