// ABOUTME: Structural comparison of two XML trees
// ABOUTME: Walks both trees, matches children and reports raw differences

package xmldiff

import (
	"strconv"

	"github.com/nainya/docdiff/pkg/xmltree"
)

// Comparer walks a control and a test document and reports differences.
// The zero value matches children by element name and keeps every difference.
type Comparer struct {
	// Qualifier selects which control and test elements are compared.
	Qualifier ElementQualifier
	// Filter drops differences before they are reported.
	Filter Filter
	// CompareUnmatched pairs leftover children with each other instead of
	// reporting them as missing.
	CompareUnmatched bool
}

type comparison struct {
	cfg         *Comparer
	qualifier   ElementQualifier
	differences []Difference
}

// Compare returns the differences between control and test, in discovery
// order.
func (c *Comparer) Compare(control, test *xmltree.Document) []Difference {
	cmp := &comparison{cfg: c, qualifier: c.Qualifier}
	if cmp.qualifier == nil {
		cmp.qualifier = NameQualifier{}
	}
	cmp.compareNode(
		NodeRef{Doc: control, ID: control.Root()},
		NodeRef{Doc: test, ID: test.Root()},
	)
	return cmp.differences
}

func (c *comparison) report(kind Kind, control, test NodeDetail) {
	d := Difference{Kind: kind, Control: control, Test: test}
	if c.cfg.Filter != nil && c.cfg.Filter.Skip(d) {
		return
	}
	c.differences = append(c.differences, d)
}

func (c *comparison) reportIf(differs bool, kind Kind, control NodeRef, controlValue string, test NodeRef, testValue string) {
	if differs {
		c.report(kind, NodeDetail{Node: control, Value: controlValue}, NodeDetail{Node: test, Value: testValue})
	}
}

func (c *comparison) compareNode(control, test NodeRef) {
	cd, td := control.Doc, test.Doc

	// Basics
	controlKind, testKind := cd.Kind(control.ID), td.Kind(test.ID)
	if controlKind != testKind {
		c.reportIf(true, NodeType, control, controlKind.String(), test, testKind.String())
		return
	}
	c.reportIf(cd.NamespaceURI(control.ID) != td.NamespaceURI(test.ID), NamespaceURI,
		control, cd.NamespaceURI(control.ID), test, td.NamespaceURI(test.ID))
	c.reportIf(cd.Prefix(control.ID) != td.Prefix(test.ID), NamespacePrefix,
		control, cd.Prefix(control.ID), test, td.Prefix(test.ID))

	switch controlKind {
	case xmltree.DocumentNode:
		c.reportIf(cd.Doctype() != td.Doctype(), DoctypeName, control, cd.Doctype(), test, td.Doctype())
	case xmltree.ElementNode:
		c.compareElement(control, test)
	case xmltree.TextNode:
		c.reportIf(cd.Data(control.ID) != td.Data(test.ID), TextValue,
			control, cd.Data(control.ID), test, td.Data(test.ID))
	case xmltree.CommentNode:
		c.reportIf(cd.Data(control.ID) != td.Data(test.ID), CommentValue,
			control, cd.Data(control.ID), test, td.Data(test.ID))
	}

	controlHasChildren, testHasChildren := cd.HasChildNodes(control.ID), td.HasChildNodes(test.ID)
	c.reportIf(controlHasChildren != testHasChildren, HasChildNodes,
		control, strconv.FormatBool(controlHasChildren), test, strconv.FormatBool(testHasChildren))

	if controlHasChildren && testHasChildren {
		controlChildren, testChildren := cd.Children(control.ID), td.Children(test.ID)
		c.reportIf(len(controlChildren) != len(testChildren), ChildNodeListLength,
			control, strconv.Itoa(len(controlChildren)), test, strconv.Itoa(len(testChildren)))
		c.compareChildren(controlChildren, cd, testChildren, td)
	}
}

func (c *comparison) compareElement(control, test NodeRef) {
	cd, td := control.Doc, test.Doc
	c.reportIf(cd.LocalName(control.ID) != td.LocalName(test.ID), ElementTagName,
		control, cd.LocalName(control.ID), test, td.LocalName(test.ID))

	controlAttrs, testAttrs := cd.Attributes(control.ID), td.Attributes(test.ID)
	c.reportIf(len(controlAttrs) != len(testAttrs), ElementNumAttributes,
		control, strconv.Itoa(len(controlAttrs)), test, strconv.Itoa(len(testAttrs)))

	seen := make([]bool, len(testAttrs))
	for i, attr := range controlAttrs {
		j := indexOfAttr(testAttrs, attr)
		if j < 0 {
			c.reportIf(true, AttrNameNotFound, control, attr.Name(), test, Absent)
			continue
		}
		seen[j] = true
		c.reportIf(attr.Value != testAttrs[j].Value, AttrValue, control, attr.Value, test, testAttrs[j].Value)
		c.reportIf(i != j, AttrSequence, control, strconv.Itoa(i), test, strconv.Itoa(j))
	}
	for j, attr := range testAttrs {
		if !seen[j] {
			c.reportIf(true, AttrNameNotFound, control, Absent, test, attr.Name())
		}
	}
}

func indexOfAttr(attrs []xmltree.Attr, want xmltree.Attr) int {
	for i, attr := range attrs {
		if attr.Local != want.Local {
			continue
		}
		if attr.Namespace == want.Namespace && (attr.Namespace != "" || attr.Prefix == want.Prefix) {
			return i
		}
	}
	return -1
}

// compareChildren matches every control child with a test child. The search
// for control child i starts at test index i, clamped to the last test
// child, and wraps around once. Control children are then compared or
// reported missing in document order, followed by the leftover test children.
func (c *comparison) compareChildren(controlChildren []xmltree.NodeID, cd *xmltree.Document, testChildren []xmltree.NodeID, td *xmltree.Document) {
	matched := make([]bool, len(testChildren))
	partner := make([]int, len(controlChildren))
	last := len(testChildren) - 1

	for i, controlID := range controlChildren {
		partner[i] = -1
		control := NodeRef{Doc: cd, ID: controlID}
		start := min(i, last)
		for j := start; ; {
			if !matched[j] && c.qualifies(control, NodeRef{Doc: td, ID: testChildren[j]}) {
				partner[i] = j
				matched[j] = true
				break
			}
			j++
			if j > last {
				j = 0
			}
			if j == start {
				break
			}
		}
	}

	if c.cfg.CompareUnmatched {
		for i, j := range partner {
			if j >= 0 {
				continue
			}
			if j = firstUnmatched(matched, cd.Kind(controlChildren[i]), testChildren, td); j >= 0 {
				partner[i] = j
				matched[j] = true
			}
		}
	}

	for i, j := range partner {
		control := NodeRef{Doc: cd, ID: controlChildren[i]}
		if j < 0 {
			c.report(ChildNodeNotFound,
				NodeDetail{Node: control, Value: cd.Name(control.ID)},
				NodeDetail{Node: NoNode, Value: Absent})
			continue
		}
		test := NodeRef{Doc: td, ID: testChildren[j]}
		c.reportIf(i != j, ChildNodeListSequence, control, strconv.Itoa(i), test, strconv.Itoa(j))
		c.compareNode(control, test)
	}

	for j, ok := range matched {
		if ok {
			continue
		}
		test := NodeRef{Doc: td, ID: testChildren[j]}
		c.report(ChildNodeNotFound,
			NodeDetail{Node: NoNode, Value: Absent},
			NodeDetail{Node: test, Value: td.Name(test.ID)})
	}
}

func (c *comparison) qualifies(control, test NodeRef) bool {
	controlKind := control.Doc.Kind(control.ID)
	if controlKind != test.Doc.Kind(test.ID) {
		return false
	}
	if controlKind != xmltree.ElementNode {
		return true
	}
	return c.qualifier.Qualify(control, test)
}

func firstUnmatched(matched []bool, kind xmltree.Kind, testChildren []xmltree.NodeID, td *xmltree.Document) int {
	for j, ok := range matched {
		if !ok && td.Kind(testChildren[j]) == kind {
			return j
		}
	}
	return -1
}
