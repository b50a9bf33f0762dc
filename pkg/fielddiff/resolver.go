// ABOUTME: Property hierarchy resolver for raw XML differences
// ABOUTME: Walks up from the changed node to its schema and field

package fielddiff

import (
	"slices"
	"strconv"

	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/xmldiff"
	"github.com/nainya/docdiff/pkg/xmltree"
)

// Element and attribute names of the document export layout.
const (
	SchemaElement   = "schema"
	FacetElement    = "facet"
	BlobDataElement = "data"
	TypeAttribute   = "type"
	NameAttribute   = "name"
)

// FieldDifference is a raw difference located within a schema field.
type FieldDifference struct {
	Schema    string
	Field     string
	Hierarchy model.Hierarchy
	Kind      xmldiff.Kind
	Control   xmldiff.NodeDetail
	Test      xmldiff.NodeDetail
}

// PropertyTypeOf returns the type tag of a node, or undefined when it has
// no type attribute.
func PropertyTypeOf(doc *xmltree.Document, id xmltree.NodeID) model.PropertyType {
	if t, ok := doc.Attribute(id, TypeAttribute); ok {
		return model.PropertyType(t).OrUndefined()
	}
	return model.TypeUndefined
}

// Resolve locates a raw difference within a schema field. It reports false
// when the difference is not inside a field: outside any schema, under a
// facet, or under the data sub-node of a blob.
func Resolve(d xmldiff.Difference) (*FieldDifference, bool) {
	ref := d.Control.Node
	if !ref.Valid() {
		ref = d.Test.Node
	}
	if !ref.Valid() {
		return nil, false
	}

	doc := ref.Doc
	current := ref.ID
	parent := doc.Parent(current)

	var field string
	var hierarchy model.Hierarchy

	for parent != xmltree.InvalidNode &&
		doc.Name(current) != SchemaElement &&
		doc.Name(parent) != BlobDataElement {

		parentType := PropertyTypeOf(doc, parent)
		switch parentType.Category() {
		case model.List:
			hierarchy = append(hierarchy, model.NewHierarchyNode(parentType, strconv.Itoa(doc.ElementPosition(current))))
		case model.Complex, model.Content:
			hierarchy = append(hierarchy, model.NewHierarchyNode(parentType, doc.LocalName(current)))
		}

		// Field boundary
		if doc.Name(parent) == SchemaElement {
			// Facets are not fields.
			if name := doc.LocalName(current); name != FacetElement {
				field = name
				fieldType := PropertyTypeOf(doc, current)
				if len(hierarchy) == 0 && fieldType.Category() != model.Undefined {
					hierarchy = append(hierarchy, model.NewTerminalNode(fieldType))
				}
			}
		}

		current = parent
		parent = doc.Parent(current)
	}

	if parent == xmltree.InvalidNode || field == "" || len(hierarchy) == 0 {
		return nil, false
	}

	schema := doc.Name(current)
	if name, ok := doc.Attribute(current, NameAttribute); ok {
		schema = name
	}

	slices.Reverse(hierarchy)

	return &FieldDifference{
		Schema:    schema,
		Field:     field,
		Hierarchy: hierarchy,
		Kind:      d.Kind,
		Control:   d.Control,
		Test:      d.Test,
	}, true
}
