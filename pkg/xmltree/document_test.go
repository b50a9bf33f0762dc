// ABOUTME: Tests for the XML arena tree
// ABOUTME: Verifies parsing options, navigation and namespace resolution

package xmltree

import (
	"errors"
	"strings"
	"testing"
)

const sampleSchema = `<schema xmlns:dc="dcNS" name="dublincore">
  <dc:title type="string">joe</dc:title>
  <dc:contributors type="scalarList">
    <item type="string">john</item>
    <item type="string">jack</item>
  </dc:contributors>
  <!-- comment -->
</schema>`

func mustParse(t *testing.T, s string, opts ParseOptions) *Document {
	t.Helper()
	doc, err := ParseString(s, opts)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	return doc
}

func TestParseDocumentNode(t *testing.T) {
	doc := mustParse(t, sampleSchema, DefaultParseOptions())

	root := doc.Root()
	if doc.Kind(root) != DocumentNode {
		t.Fatalf("Expected document node, got %s", doc.Kind(root))
	}
	if doc.Parent(root) != InvalidNode {
		t.Errorf("Document node should have no parent")
	}
	if doc.Name(root) != DocumentName {
		t.Errorf("Expected %s, got %s", DocumentName, doc.Name(root))
	}

	schema := doc.DocumentElement()
	if doc.Name(schema) != "schema" {
		t.Fatalf("Expected schema element, got %s", doc.Name(schema))
	}
	if doc.Parent(schema) != root {
		t.Errorf("Document element parent should be the document node")
	}
	if name, ok := doc.Attribute(schema, "name"); !ok || name != "dublincore" {
		t.Errorf("Expected name=dublincore, got %q (%v)", name, ok)
	}
	if len(doc.Attributes(schema)) != 1 {
		t.Errorf("Namespace declarations must not be reported as attributes, got %v", doc.Attributes(schema))
	}
}

func TestParseIgnoresWhitespaceAndComments(t *testing.T) {
	doc := mustParse(t, sampleSchema, DefaultParseOptions())
	schema := doc.DocumentElement()

	children := doc.Children(schema)
	if len(children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(children))
	}

	title := children[0]
	if doc.Name(title) != "dc:title" || doc.LocalName(title) != "title" || doc.Prefix(title) != "dc" {
		t.Errorf("Unexpected title naming: %s %s %s", doc.Name(title), doc.LocalName(title), doc.Prefix(title))
	}
	if doc.NamespaceURI(title) != "dcNS" {
		t.Errorf("Expected dcNS, got %q", doc.NamespaceURI(title))
	}

	text := doc.FirstChild(title)
	if doc.Kind(text) != TextNode || doc.Name(text) != TextName || doc.Data(text) != "joe" {
		t.Errorf("Unexpected text node: %s %q", doc.Name(text), doc.Data(text))
	}
}

func TestParseKeepsWhitespaceAndComments(t *testing.T) {
	doc := mustParse(t, sampleSchema, ParseOptions{})
	schema := doc.DocumentElement()

	var comments, texts int
	for _, child := range doc.Children(schema) {
		switch doc.Kind(child) {
		case CommentNode:
			comments++
		case TextNode:
			texts++
		}
	}
	if comments != 1 {
		t.Errorf("Expected 1 comment, got %d", comments)
	}
	if texts == 0 {
		t.Errorf("Expected whitespace text nodes to be kept")
	}
}

func TestPositionCountsAllSiblings(t *testing.T) {
	doc := mustParse(t, `<list><a/>text<b/><c/></list>`, DefaultParseOptions())
	children := doc.Children(doc.DocumentElement())
	if len(children) != 4 {
		t.Fatalf("Expected 4 children, got %d", len(children))
	}

	for i, child := range children {
		if got := doc.Position(child); got != i {
			t.Errorf("Child %d: expected position %d, got %d", i, i, got)
		}
	}

	if doc.PrevSibling(children[0]) != InvalidNode {
		t.Errorf("First child should have no previous sibling")
	}
	if doc.NextSibling(children[3]) != InvalidNode {
		t.Errorf("Last child should have no next sibling")
	}
	if doc.NextSibling(children[1]) != children[2] {
		t.Errorf("Unexpected next sibling")
	}
}

func TestPositionOnLargeList(t *testing.T) {
	const n = 100000
	var sb strings.Builder
	sb.WriteString(`<list type="scalarList">`)
	for i := 0; i < n; i++ {
		sb.WriteString(`<item type="string">x</item>`)
	}
	sb.WriteString(`</list>`)

	doc := mustParse(t, sb.String(), DefaultParseOptions())
	children := doc.Children(doc.DocumentElement())
	if len(children) != n {
		t.Fatalf("Expected %d children, got %d", n, len(children))
	}

	// One scan of the siblings per lookup keeps this loop linear in n
	for i := n - 100; i < n; i++ {
		if got := doc.Position(children[i]); got != i {
			t.Fatalf("Child %d: expected position %d, got %d", i, i, got)
		}
		if got := doc.ElementPosition(children[i]); got != i {
			t.Fatalf("Child %d: expected element position %d, got %d", i, i, got)
		}
	}
}

func TestElementPositionSkipsKeptWhitespace(t *testing.T) {
	doc := mustParse(t, sampleSchema, ParseOptions{})
	var contributors NodeID = InvalidNode
	for _, child := range doc.Children(doc.DocumentElement()) {
		if doc.LocalName(child) == "contributors" {
			contributors = child
		}
	}
	if contributors == InvalidNode {
		t.Fatalf("contributors not found")
	}

	items := doc.ElementChildren(contributors)
	if len(items) != 2 {
		t.Fatalf("Expected 2 element children, got %d", len(items))
	}
	if len(doc.Children(contributors)) != 5 {
		t.Fatalf("Expected whitespace between items to be kept, got %d children", len(doc.Children(contributors)))
	}

	for i, item := range items {
		if got := doc.ElementPosition(item); got != i {
			t.Errorf("Item %d: expected element position %d, got %d", i, i, got)
		}
	}
	if got := doc.Position(items[1]); got != 3 {
		t.Errorf("Expected the second item at sibling position 3, got %d", got)
	}
	if got := doc.ElementPosition(doc.Root()); got != 0 {
		t.Errorf("Expected the document node at element position 0, got %d", got)
	}
}

func TestTextContent(t *testing.T) {
	doc := mustParse(t, sampleSchema, DefaultParseOptions())
	contributors := doc.Children(doc.DocumentElement())[1]

	if got := doc.TextContent(contributors); got != "johnjack" {
		t.Errorf("Expected johnjack, got %q", got)
	}

	empty := mustParse(t, `<integerItem type="integer"/>`, DefaultParseOptions())
	if got := empty.TextContent(empty.DocumentElement()); got != "" {
		t.Errorf("Expected empty text content, got %q", got)
	}
	if empty.HasChildNodes(empty.DocumentElement()) {
		t.Errorf("Empty element should have no children")
	}
}

func TestParseEntitiesAndDoctype(t *testing.T) {
	doc := mustParse(t, `<!DOCTYPE document><document>a &amp; b</document>`, DefaultParseOptions())
	if doc.Doctype() != "document" {
		t.Errorf("Expected doctype document, got %q", doc.Doctype())
	}
	if got := doc.TextContent(doc.DocumentElement()); got != "a & b" {
		t.Errorf("Expected unescaped text, got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrNoDocumentElement},
		{"mismatched", "<a><b></a></b>", ErrMalformed},
		{"unclosed", "<a><b></b>", ErrMalformed},
		{"garbage", "<a <b>", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input, DefaultParseOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestInvalidNodeAccessors(t *testing.T) {
	doc := mustParse(t, `<a/>`, DefaultParseOptions())

	if doc.Parent(InvalidNode) != InvalidNode {
		t.Errorf("Invalid node parent should be invalid")
	}
	if doc.Name(InvalidNode) != "" || doc.TextContent(NodeID(99)) != "" {
		t.Errorf("Invalid node accessors should return zero values")
	}
	if doc.Children(InvalidNode) != nil {
		t.Errorf("Invalid node should have no children")
	}
}
