package repo

import (
	"errors"
	"fmt"
	"regexp"
)

// identPattern is the grammar accepted for table and column names: a leading
// letter or underscore followed by letters, digits, or underscores.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Schema describes the storage shape of one entry type: the table and the
// columns holding the identifier, the serialized record, and the optional
// removed/created/modified markers. A Schema is immutable once built.
type Schema struct {
	id       string
	table    string
	idCol    string
	dataCol  string
	removed  string
	created  string
	modified string
}

// ID returns the schema identifier.
func (s *Schema) ID() string { return s.id }

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// IDColumn returns the identifier column name.
func (s *Schema) IDColumn() string { return s.idCol }

// DataColumn returns the serialized-record column name.
func (s *Schema) DataColumn() string { return s.dataCol }

// RemovedColumn returns the removed-marker column name and whether one is
// configured. Schemas without a removed column hard-delete rows.
func (s *Schema) RemovedColumn() (string, bool) { return s.removed, s.removed != "" }

// CreatedColumn returns the created-timestamp column name, if configured.
func (s *Schema) CreatedColumn() (string, bool) { return s.created, s.created != "" }

// ModifiedColumn returns the modified-timestamp column name, if configured.
func (s *Schema) ModifiedColumn() (string, bool) { return s.modified, s.modified != "" }

// SchemaBuilder assembles a Schema. Build may be called exactly once; further
// calls to any method after Build fail.
type SchemaBuilder struct {
	schema Schema
	built  bool
	err    error
}

// NewSchemaBuilder starts a builder for the named schema over the given table.
func NewSchemaBuilder(id, table string) *SchemaBuilder {
	return &SchemaBuilder{schema: Schema{id: id, table: table}}
}

func (b *SchemaBuilder) set(field *string, name, value string) *SchemaBuilder {
	if b.built {
		b.err = errors.New("schema already built")
		return b
	}
	if b.err != nil {
		return b
	}
	if !identPattern.MatchString(value) {
		b.err = fmt.Errorf("invalid %s column name %q", name, value)
		return b
	}
	*field = value
	return b
}

// IDColumn sets the identifier column name.
func (b *SchemaBuilder) IDColumn(name string) *SchemaBuilder {
	return b.set(&b.schema.idCol, "id", name)
}

// DataColumn sets the serialized-record column name.
func (b *SchemaBuilder) DataColumn(name string) *SchemaBuilder {
	return b.set(&b.schema.dataCol, "data", name)
}

// RemovedColumn sets the removed-marker column name. Configuring it makes
// deletes soft: rows are marked rather than dropped.
func (b *SchemaBuilder) RemovedColumn(name string) *SchemaBuilder {
	return b.set(&b.schema.removed, "removed", name)
}

// CreatedColumn sets the created-timestamp column name.
func (b *SchemaBuilder) CreatedColumn(name string) *SchemaBuilder {
	return b.set(&b.schema.created, "created", name)
}

// ModifiedColumn sets the modified-timestamp column name.
func (b *SchemaBuilder) ModifiedColumn(name string) *SchemaBuilder {
	return b.set(&b.schema.modified, "modified", name)
}

// Build validates and returns the schema. The id and data columns are
// mandatory; the builder is unusable afterwards.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.built {
		return nil, errors.New("schema already built")
	}
	if b.err != nil {
		return nil, b.err
	}
	b.built = true
	if b.schema.id == "" {
		return nil, errors.New("schema id required")
	}
	if !identPattern.MatchString(b.schema.table) {
		return nil, fmt.Errorf("invalid table name %q", b.schema.table)
	}
	if b.schema.idCol == "" || b.schema.dataCol == "" {
		return nil, errors.New("schema requires id and data columns")
	}
	s := b.schema
	return &s, nil
}
