// ABOUTME: Raw structural differences between two XML trees
// ABOUTME: A difference names its kind and the node detail on both sides

package xmldiff

import (
	"fmt"

	"github.com/nainya/docdiff/pkg/xmltree"
)

// Kind identifies what differs between two nodes.
type Kind uint8

const (
	NodeType Kind = iota + 1
	NamespaceURI
	NamespacePrefix
	ElementTagName
	ElementNumAttributes
	AttrValue
	AttrNameNotFound
	AttrSequence
	TextValue
	CommentValue
	DoctypeName
	HasChildNodes
	ChildNodeListLength
	ChildNodeListSequence
	ChildNodeNotFound
)

var kindNames = map[Kind]string{
	NodeType:              "node-type",
	NamespaceURI:          "namespace-uri",
	NamespacePrefix:       "namespace-prefix",
	ElementTagName:        "element-tag-name",
	ElementNumAttributes:  "element-num-attributes",
	AttrValue:             "attr-value",
	AttrNameNotFound:      "attr-name-not-found",
	AttrSequence:          "attr-sequence",
	TextValue:             "text-value",
	CommentValue:          "comment-value",
	DoctypeName:           "doctype-name",
	HasChildNodes:         "has-child-nodes",
	ChildNodeListLength:   "child-nodelist-length",
	ChildNodeListSequence: "child-nodelist-sequence",
	ChildNodeNotFound:     "child-node-not-found",
}

// String returns the kebab-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Absent is the value reported for the side a node is missing from.
const Absent = "null"

// NodeRef addresses a node in a parsed document.
type NodeRef struct {
	Doc *xmltree.Document
	ID  xmltree.NodeID
}

// NoNode is the reference used for a missing side.
var NoNode = NodeRef{ID: xmltree.InvalidNode}

// Valid reports whether the reference addresses a node.
func (r NodeRef) Valid() bool {
	return r.Doc.Valid(r.ID)
}

// NodeDetail is one side of a difference.
type NodeDetail struct {
	Node  NodeRef
	Value string
}

// Difference is a single structural difference.
type Difference struct {
	Kind    Kind
	Control NodeDetail
	Test    NodeDetail
}

// Description renders the difference for logs.
func (d Difference) Description() string {
	return fmt.Sprintf("%s: expected [%s] but was [%s] (%s vs %s)",
		d.Kind, d.Control.Value, d.Test.Value, path(d.Control.Node), path(d.Test.Node))
}

// path renders an XPath-like location of the node.
func path(r NodeRef) string {
	if !r.Valid() {
		return Absent
	}
	doc := r.Doc
	result := ""
	for id := r.ID; doc.Parent(id) != xmltree.InvalidNode; id = doc.Parent(id) {
		step := doc.Name(id)
		if doc.Kind(id) == xmltree.TextNode {
			step = "text()"
		}
		result = fmt.Sprintf("/%s[%d]%s", step, doc.Position(id)+1, result)
	}
	if result == "" {
		return "/"
	}
	return result
}
