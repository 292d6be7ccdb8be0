package repo

import (
	"strings"
	"testing"
)

func TestSchemaBuilderBuildsFullSchema(t *testing.T) {
	schema, err := NewSchemaBuilder("work", "works").
		IDColumn("work_id").
		DataColumn("work").
		RemovedColumn("removed").
		CreatedColumn("date_created").
		ModifiedColumn("date_modified").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if schema.ID() != "work" || schema.Table() != "works" {
		t.Fatalf("unexpected identity: %s / %s", schema.ID(), schema.Table())
	}
	if schema.IDColumn() != "work_id" || schema.DataColumn() != "work" {
		t.Fatalf("unexpected columns: %s / %s", schema.IDColumn(), schema.DataColumn())
	}
	if col, ok := schema.RemovedColumn(); !ok || col != "removed" {
		t.Fatalf("removed column: %q %v", col, ok)
	}
	if col, ok := schema.CreatedColumn(); !ok || col != "date_created" {
		t.Fatalf("created column: %q %v", col, ok)
	}
	if col, ok := schema.ModifiedColumn(); !ok || col != "date_modified" {
		t.Fatalf("modified column: %q %v", col, ok)
	}
}

func TestSchemaBuilderOptionalColumnsStayAbsent(t *testing.T) {
	schema, err := NewSchemaBuilder("rel", "relationships").
		IDColumn("id").
		DataColumn("data").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := schema.RemovedColumn(); ok {
		t.Fatal("removed column should be absent")
	}
	if _, ok := schema.CreatedColumn(); ok {
		t.Fatal("created column should be absent")
	}
	if _, ok := schema.ModifiedColumn(); ok {
		t.Fatal("modified column should be absent")
	}
}

func TestSchemaBuilderValidatesIdentifiers(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"plain", "work_id", true},
		{"leading underscore", "_id", true},
		{"mixed case digits", "Col9", true},
		{"leading digit", "9col", false},
		{"embedded space", "work id", false},
		{"quote injection", `id"; DROP TABLE`, false},
		{"empty", "", false},
		{"hyphen", "work-id", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSchemaBuilder("s", "t").
				IDColumn(tc.value).
				DataColumn("data").
				Build()
			if tc.ok && err != nil {
				t.Fatalf("expected %q to be accepted: %v", tc.value, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected %q to be rejected", tc.value)
			}
		})
	}
}

func TestSchemaBuilderRequiresIDAndDataColumns(t *testing.T) {
	if _, err := NewSchemaBuilder("s", "t").DataColumn("data").Build(); err == nil {
		t.Fatal("expected build without id column to fail")
	}
	if _, err := NewSchemaBuilder("s", "t").IDColumn("id").Build(); err == nil {
		t.Fatal("expected build without data column to fail")
	}
}

func TestSchemaBuilderIsOneShot(t *testing.T) {
	b := NewSchemaBuilder("s", "t").IDColumn("id").DataColumn("data")
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil || !strings.Contains(err.Error(), "already built") {
		t.Fatalf("expected second build to fail as already built, got %v", err)
	}
}
