// ABOUTME: Document and schema level diff containers
// ABOUTME: A document diff maps schema names to field diffs

package model

import "sort"

// SchemaDiff maps field names of one schema to their diffs.
type SchemaDiff struct {
	Name   string
	Fields map[string]PropertyDiff
}

// NewSchemaDiff creates an empty schema diff.
func NewSchemaDiff(name string) *SchemaDiff {
	return &SchemaDiff{Name: name, Fields: map[string]PropertyDiff{}}
}

// Field returns the diff of a field, or nil.
func (s *SchemaDiff) Field(name string) PropertyDiff {
	return s.Fields[name]
}

// PutField stores the diff of a field.
func (s *SchemaDiff) PutField(name string, diff PropertyDiff) {
	s.Fields[name] = diff
}

// FieldCount returns the number of differing fields.
func (s *SchemaDiff) FieldCount() int {
	return len(s.Fields)
}

// FieldNames returns the field names in ascending order.
func (s *SchemaDiff) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DocumentDiff is the result of comparing two document exports.
type DocumentDiff struct {
	Schemas map[string]*SchemaDiff
}

// NewDocumentDiff creates an empty document diff.
func NewDocumentDiff() *DocumentDiff {
	return &DocumentDiff{Schemas: map[string]*SchemaDiff{}}
}

// Schema returns the diff of a schema, or nil.
func (d *DocumentDiff) Schema(name string) *SchemaDiff {
	return d.Schemas[name]
}

// InitSchema returns the diff of a schema, creating it if needed.
func (d *DocumentDiff) InitSchema(name string) *SchemaDiff {
	if s, ok := d.Schemas[name]; ok {
		return s
	}
	s := NewSchemaDiff(name)
	d.Schemas[name] = s
	return s
}

// SchemaCount returns the number of schemas with at least one field diff.
func (d *DocumentDiff) SchemaCount() int {
	return len(d.Schemas)
}

// SchemaNames returns the schema names in ascending order.
func (d *DocumentDiff) SchemaNames() []string {
	names := make([]string, 0, len(d.Schemas))
	for name := range d.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether the documents showed no field difference.
func (d *DocumentDiff) IsEmpty() bool {
	return len(d.Schemas) == 0
}
