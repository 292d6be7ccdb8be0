package catalog

import (
	"context"

	"github.com/tcat-tamu/trc-sub000/pkg/catalog"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// RelationshipEditor buffers mutations of one relationship entry.
type RelationshipEditor struct {
	cmd *repo.Command[RelationshipRecord]
}

func newRelationshipEditor(cmd *repo.Command[RelationshipRecord], actor *repo.Actor) *RelationshipEditor {
	id := cmd.ID()
	creator := ""
	if actor != nil {
		creator = actor.ID
	}
	isCreate := cmd.Action() == repo.ActionCreate
	cmd.Add("set relationship id", func(r *RelationshipRecord) error {
		r.ID = id
		if isCreate {
			r.CreatedBy = creator
		}
		return nil
	})
	return &RelationshipEditor{cmd: cmd}
}

// ID returns the relationship's entry id.
func (e *RelationshipEditor) ID() string { return e.cmd.ID() }

// SetType sets the relationship type identifier. The type must be
// registered; commits with unknown types are vetoed.
func (e *RelationshipEditor) SetType(typeID string) {
	e.cmd.Add("set type", func(r *RelationshipRecord) error {
		r.TypeID = typeID
		return nil
	})
}

// SetSource sets the origin anchor.
func (e *RelationshipEditor) SetSource(anchor catalog.Anchor) {
	e.cmd.Add("set source", func(r *RelationshipRecord) error {
		r.Source = anchor
		return nil
	})
}

// SetTarget sets the destination anchor.
func (e *RelationshipEditor) SetTarget(anchor catalog.Anchor) {
	e.cmd.Add("set target", func(r *RelationshipRecord) error {
		r.Target = anchor
		return nil
	})
}

// SetDescription sets the free-text description.
func (e *RelationshipEditor) SetDescription(description string) {
	e.cmd.Add("set description", func(r *RelationshipRecord) error {
		r.Description = description
		return nil
	})
}

// Execute submits the buffered mutations to the commit pipeline.
func (e *RelationshipEditor) Execute(ctx context.Context) *repo.Commit[RelationshipRecord] {
	return e.cmd.Execute(ctx)
}
