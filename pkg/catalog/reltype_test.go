package catalog

import "testing"

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRelationshipTypeRegistry()
	if err := reg.Register(RelationshipType{ID: "cites", Title: "cites", Directed: true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := reg.Get("cites")
	if !ok || got.Title != "cites" {
		t.Fatalf("lookup failed: %+v %v", got, ok)
	}
	if _, ok := reg.Get("unknown"); ok {
		t.Fatal("unexpected hit for unknown type")
	}
}

func TestRegistryRejectsInvalidRegistrations(t *testing.T) {
	reg := NewRelationshipTypeRegistry()
	if err := reg.Register(RelationshipType{}); err == nil {
		t.Fatal("expected empty id to be rejected")
	}
	if err := reg.Register(RelationshipType{ID: "cites"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(RelationshipType{ID: "cites"}); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}

func TestRegistryListIsSortedByID(t *testing.T) {
	reg := NewRelationshipTypeRegistry()
	for _, id := range []string{"c", "a", "b"} {
		if err := reg.Register(RelationshipType{ID: id}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	got := reg.List()
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRelationshipTypeRegistry()
	if err := reg.Register(RelationshipType{ID: "cites"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Unregister("cites") {
		t.Fatal("expected removal to report presence")
	}
	if reg.Unregister("cites") {
		t.Fatal("expected second removal to report absence")
	}
}
