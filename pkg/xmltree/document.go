// ABOUTME: Immutable arena tree for parsed XML documents
// ABOUTME: Nodes are addressed by NodeID and never change after parsing

package xmltree

import "strings"

// NodeID identifies a node in the document arena.
type NodeID int

// InvalidNode represents an invalid node reference.
const InvalidNode NodeID = -1

// Kind is the node kind.
type Kind uint8

const (
	DocumentNode Kind = iota
	ElementNode
	TextNode
	CommentNode
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Reserved node names, as the DOM reports them.
const (
	DocumentName = "#document"
	TextName     = "#text"
	CommentName  = "#comment"
)

// Attr is an element attribute. Namespace declarations are not attributes.
type Attr struct {
	Prefix    string
	Local     string
	Namespace string
	Value     string
}

// Name returns the qualified attribute name.
func (a Attr) Name() string {
	if a.Prefix == "" {
		return a.Local
	}
	return a.Prefix + ":" + a.Local
}

type node struct {
	kind      Kind
	prefix    string
	local     string
	namespace string
	data      string
	attrs     []Attr
	children  []NodeID
	parent    NodeID
}

// Document is a parsed XML document. Node 0 is the document node.
// A Document is read-only once Parse returns and safe for concurrent readers.
type Document struct {
	nodes   []node
	doctype string
}

// Root returns the document node.
func (d *Document) Root() NodeID {
	if d == nil || len(d.nodes) == 0 {
		return InvalidNode
	}
	return 0
}

// DocumentElement returns the top-level element, or InvalidNode.
func (d *Document) DocumentElement() NodeID {
	for _, child := range d.Children(d.Root()) {
		if d.nodes[child].kind == ElementNode {
			return child
		}
	}
	return InvalidNode
}

// Len returns the number of nodes in the arena.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.nodes)
}

// Doctype returns the DOCTYPE name, if the document declared one.
func (d *Document) Doctype() string {
	if d == nil {
		return ""
	}
	return d.doctype
}

// Valid reports whether id addresses a node of d.
func (d *Document) Valid(id NodeID) bool {
	return d != nil && id >= 0 && int(id) < len(d.nodes)
}

// Kind returns the node kind.
func (d *Document) Kind(id NodeID) Kind {
	if !d.Valid(id) {
		return DocumentNode
	}
	return d.nodes[id].kind
}

// Name returns the qualified node name (prefix:local for elements,
// #text, #comment and #document otherwise).
func (d *Document) Name(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	n := d.nodes[id]
	switch n.kind {
	case DocumentNode:
		return DocumentName
	case TextNode:
		return TextName
	case CommentNode:
		return CommentName
	}
	if n.prefix == "" {
		return n.local
	}
	return n.prefix + ":" + n.local
}

// LocalName returns the local part of the node name.
func (d *Document) LocalName(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	if d.nodes[id].kind != ElementNode {
		return d.Name(id)
	}
	return d.nodes[id].local
}

// Prefix returns the namespace prefix of an element.
func (d *Document) Prefix(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	return d.nodes[id].prefix
}

// NamespaceURI returns the resolved namespace URI of an element.
func (d *Document) NamespaceURI(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	return d.nodes[id].namespace
}

// Parent returns the parent node of id, or InvalidNode for the document node.
func (d *Document) Parent(id NodeID) NodeID {
	if !d.Valid(id) {
		return InvalidNode
	}
	return d.nodes[id].parent
}

// Children returns a read-only view of the node children.
// The returned slice aliases the document arena; do not modify it.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.Valid(id) {
		return nil
	}
	return d.nodes[id].children
}

// HasChildNodes reports whether the node has at least one child.
func (d *Document) HasChildNodes(id NodeID) bool {
	return len(d.Children(id)) > 0
}

// FirstChild returns the first child, or InvalidNode.
func (d *Document) FirstChild(id NodeID) NodeID {
	children := d.Children(id)
	if len(children) == 0 {
		return InvalidNode
	}
	return children[0]
}

// PrevSibling returns the previous sibling, or InvalidNode.
func (d *Document) PrevSibling(id NodeID) NodeID {
	siblings := d.Children(d.Parent(id))
	if i := indexOf(siblings, id); i > 0 {
		return siblings[i-1]
	}
	return InvalidNode
}

// NextSibling returns the next sibling, or InvalidNode.
func (d *Document) NextSibling(id NodeID) NodeID {
	siblings := d.Children(d.Parent(id))
	if i := indexOf(siblings, id); i >= 0 && i+1 < len(siblings) {
		return siblings[i+1]
	}
	return InvalidNode
}

// Position returns the zero-based index of the node among its siblings,
// counting every preceding sibling whatever its kind. The document node
// and invalid nodes are at position 0.
func (d *Document) Position(id NodeID) int {
	return max(indexOf(d.Children(d.Parent(id)), id), 0)
}

// ElementPosition returns the number of element siblings preceding the
// node. Whitespace and comments kept by the parser do not shift it.
func (d *Document) ElementPosition(id NodeID) int {
	position := 0
	for _, sibling := range d.Children(d.Parent(id)) {
		if sibling == id {
			return position
		}
		if d.nodes[sibling].kind == ElementNode {
			position++
		}
	}
	return 0
}

// ElementChildren returns the element children of a node in document order.
func (d *Document) ElementChildren(id NodeID) []NodeID {
	children := d.Children(id)
	elements := make([]NodeID, 0, len(children))
	for _, child := range children {
		if d.nodes[child].kind == ElementNode {
			elements = append(elements, child)
		}
	}
	return elements
}

// indexOf returns the index of id in siblings, or -1.
func indexOf(siblings []NodeID, id NodeID) int {
	for i, sibling := range siblings {
		if sibling == id {
			return i
		}
	}
	return -1
}

// Attributes returns a read-only view of the element attributes.
func (d *Document) Attributes(id NodeID) []Attr {
	if !d.Valid(id) {
		return nil
	}
	return d.nodes[id].attrs
}

// Attribute returns the value of the attribute with the given qualified name.
func (d *Document) Attribute(id NodeID, name string) (string, bool) {
	for _, attr := range d.Attributes(id) {
		if attr.Name() == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Data returns the character data of a text or comment node.
func (d *Document) Data(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	return d.nodes[id].data
}

// TextContent returns the concatenated text of the node subtree.
// Comments do not contribute.
func (d *Document) TextContent(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	n := d.nodes[id]
	switch n.kind {
	case TextNode, CommentNode:
		return n.data
	}
	var sb strings.Builder
	d.collectText(id, &sb)
	return sb.String()
}

func (d *Document) collectText(id NodeID, sb *strings.Builder) {
	for _, child := range d.nodes[id].children {
		switch d.nodes[child].kind {
		case TextNode:
			sb.WriteString(d.nodes[child].data)
		case ElementNode:
			d.collectText(child, sb)
		}
	}
}
