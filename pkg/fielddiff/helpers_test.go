// ABOUTME: Shared helpers for field diff tests
// ABOUTME: Runs the compare, resolve and apply pipeline on schema snippets

package fielddiff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/xmldiff"
	"github.com/nainya/docdiff/pkg/xmltree"
)

var str = model.Str

func wrapIntoSchema(xml string) string {
	return `<schema xmlns:dc="dcNS" name= "dublincore">` + xml + `</schema>`
}

func wrapIntoDocument(xml string) string {
	return "<document>" + xml + "</document>"
}

func comparer() *xmldiff.Comparer {
	return &xmldiff.Comparer{
		Qualifier: xmldiff.NameAndAttributesQualifier{},
		Filter: xmldiff.AnyFilter{
			xmldiff.StructuralFilter(),
			xmldiff.UnbalancedElementFilter(SchemaElement),
		},
	}
}

func diffDocuments(t *testing.T, left, right string) (*model.DocumentDiff, error) {
	t.Helper()
	opts := xmltree.DefaultParseOptions()
	control, err := xmltree.ParseString(left, opts)
	require.NoError(t, err)
	test, err := xmltree.ParseString(right, opts)
	require.NoError(t, err)

	doc := model.NewDocumentDiff()
	for _, d := range comparer().Compare(control, test) {
		fd, ok := Resolve(d)
		if !ok {
			continue
		}
		if err := Apply(doc, fd); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// fieldDiff diffs two schema snippets and returns the diff of one field,
// checking the dublincore schema holds the expected number of field diffs.
func fieldDiff(t *testing.T, left, right string, fieldCount int, field string) model.PropertyDiff {
	t.Helper()
	doc, err := diffDocuments(t, wrapIntoSchema(left), wrapIntoSchema(right))
	require.NoError(t, err)

	schema := doc.Schema("dublincore")
	require.NotNil(t, schema, "dublincore schema diff should exist")
	require.Equal(t, fieldCount, schema.FieldCount(), "wrong field diff count")

	diff := schema.Field(field)
	require.NotNil(t, diff, "field %s should differ", field)
	return diff
}

func fieldDiffError(t *testing.T, left, right string) error {
	t.Helper()
	_, err := diffDocuments(t, wrapIntoSchema(left), wrapIntoSchema(right))
	return err
}

func simple(t model.PropertyType, left, right *string) *model.SimplePropertyDiff {
	return model.NewSimplePropertyDiff(t, left, right)
}

func list(t model.PropertyType, items map[int]model.PropertyDiff) *model.ListPropertyDiff {
	d := model.NewListPropertyDiff(t)
	for i, item := range items {
		d.Put(i, item)
	}
	return d
}

func complexOf(members map[string]model.PropertyDiff) *model.ComplexPropertyDiff {
	d := model.NewComplexPropertyDiff()
	for name, member := range members {
		d.Put(name, member)
	}
	return d
}

func content(dt model.DifferenceType, left, right model.ContentProperty) *model.ContentPropertyDiff {
	d := model.NewContentPropertyDiff()
	d.DifferenceType = dt
	d.Left, d.Right = left, right
	return d
}
