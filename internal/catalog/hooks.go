package catalog

import (
	"context"
	"fmt"

	"github.com/tcat-tamu/trc-sub000/pkg/catalog"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// entryResolver reports whether a catalog entry id resolves to a live
// entry of any type.
type entryResolver func(ctx context.Context, entryID string) error

// relationshipTypeHook vetoes relationships whose type identifier is not
// registered. Deletes pass through untouched.
func relationshipTypeHook(reg *catalog.RelationshipTypeRegistry) repo.Hook[RelationshipRecord] {
	return func(ctx context.Context, update *repo.UpdateContext[RelationshipRecord]) error {
		if update.Action() == repo.ActionDelete {
			return nil
		}
		rec, ok := update.Modified()
		if !ok {
			return nil
		}
		if rec.TypeID == "" {
			return fmt.Errorf("relationship type required")
		}
		if _, ok := reg.Get(rec.TypeID); !ok {
			return fmt.Errorf("relationship type %q not registered", rec.TypeID)
		}
		return nil
	}
}

// relationshipEndpointsHook vetoes relationships whose anchors do not
// resolve to live entries.
func relationshipEndpointsHook(resolve entryResolver) repo.Hook[RelationshipRecord] {
	return func(ctx context.Context, update *repo.UpdateContext[RelationshipRecord]) error {
		if update.Action() == repo.ActionDelete {
			return nil
		}
		rec, ok := update.Modified()
		if !ok {
			return nil
		}
		for _, anchor := range []catalog.Anchor{rec.Source, rec.Target} {
			if anchor.EntryID == "" {
				return fmt.Errorf("relationship anchor missing entry id")
			}
			if err := resolve(ctx, anchor.EntryID); err != nil {
				return fmt.Errorf("resolving anchor %q: %w", anchor.EntryID, err)
			}
		}
		return nil
	}
}

// accountLoginHook vetoes accounts without a login identifier.
func accountLoginHook() repo.Hook[AccountRecord] {
	return func(ctx context.Context, update *repo.UpdateContext[AccountRecord]) error {
		if update.Action() == repo.ActionDelete {
			return nil
		}
		rec, ok := update.Modified()
		if !ok {
			return nil
		}
		if rec.LoginID == "" {
			return fmt.Errorf("account login id required")
		}
		return nil
	}
}
