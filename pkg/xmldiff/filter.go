// ABOUTME: Difference filters dropping differences callers do not care about
// ABOUTME: Filters compose so one comparer can apply several policies

package xmldiff

import (
	"strings"

	"github.com/nainya/docdiff/pkg/xmltree"
)

// Filter decides whether a difference is dropped.
type Filter interface {
	Skip(d Difference) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(d Difference) bool

// Skip implements Filter.
func (f FilterFunc) Skip(d Difference) bool {
	return f(d)
}

// AnyFilter drops a difference if any of its filters does.
type AnyFilter []Filter

// Skip implements Filter.
func (a AnyFilter) Skip(d Difference) bool {
	for _, f := range a {
		if f != nil && f.Skip(d) {
			return true
		}
	}
	return false
}

// KindFilter drops every difference of the listed kinds.
func KindFilter(kinds ...Kind) Filter {
	set := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return FilterFunc(func(d Difference) bool {
		_, ok := set[d.Kind]
		return ok
	})
}

// StructuralFilter drops differences in namespaces, tag names, attributes,
// doctype and child ordering or counts. Value and presence differences are
// kept.
func StructuralFilter() Filter {
	return KindFilter(
		NamespaceURI,
		NamespacePrefix,
		ElementTagName,
		ElementNumAttributes,
		AttrValue,
		AttrNameNotFound,
		AttrSequence,
		DoctypeName,
		ChildNodeListLength,
		ChildNodeListSequence,
	)
}

// UnbalancedElementFilter drops a missing-child difference when the node
// present on one side is an element with the given qualified name.
func UnbalancedElementFilter(name string) Filter {
	return FilterFunc(func(d Difference) bool {
		if d.Kind != ChildNodeNotFound {
			return false
		}
		present := d.Control.Node
		if !present.Valid() {
			present = d.Test.Node
		}
		return present.Valid() &&
			present.Doc.Kind(present.ID) == xmltree.ElementNode &&
			present.Doc.Name(present.ID) == name
	})
}

// WhitespaceTextFilter drops text value and missing-child differences
// whose nodes are all whitespace-only text, such as the indentation kept
// when a document is parsed without trimming.
func WhitespaceTextFilter() Filter {
	return FilterFunc(func(d Difference) bool {
		if d.Kind != TextValue && d.Kind != ChildNodeNotFound {
			return false
		}
		seen := false
		for _, ref := range []NodeRef{d.Control.Node, d.Test.Node} {
			if !ref.Valid() {
				continue
			}
			if ref.Doc.Kind(ref.ID) != xmltree.TextNode || strings.TrimSpace(ref.Doc.Data(ref.ID)) != "" {
				return false
			}
			seen = true
		}
		return seen
	})
}
