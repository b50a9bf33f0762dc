// ABOUTME: Element qualifiers decide which elements are compared together
// ABOUTME: Matching is by name, optionally by name plus every attribute

package xmldiff

import "github.com/nainya/docdiff/pkg/xmltree"

// ElementQualifier reports whether a control and a test element should be
// compared with each other.
type ElementQualifier interface {
	Qualify(control, test NodeRef) bool
}

// NameQualifier matches elements with the same namespace URI and local name.
type NameQualifier struct{}

// Qualify implements ElementQualifier.
func (NameQualifier) Qualify(control, test NodeRef) bool {
	return sameName(control, test)
}

// NameAndAttributesQualifier matches elements with the same name and the
// same attributes with the same values.
type NameAndAttributesQualifier struct{}

// Qualify implements ElementQualifier.
func (NameAndAttributesQualifier) Qualify(control, test NodeRef) bool {
	if !sameName(control, test) {
		return false
	}
	controlAttrs := control.Doc.Attributes(control.ID)
	testAttrs := test.Doc.Attributes(test.ID)
	if len(controlAttrs) != len(testAttrs) {
		return false
	}
	for _, attr := range controlAttrs {
		other, ok := findAttr(testAttrs, attr)
		if !ok || other.Value != attr.Value {
			return false
		}
	}
	return true
}

func sameName(control, test NodeRef) bool {
	return control.Doc.LocalName(control.ID) == test.Doc.LocalName(test.ID) &&
		control.Doc.NamespaceURI(control.ID) == test.Doc.NamespaceURI(test.ID)
}

// findAttr looks an attribute up by namespace and local name, falling back
// to the qualified name for unresolved prefixes.
func findAttr(attrs []xmltree.Attr, want xmltree.Attr) (xmltree.Attr, bool) {
	for _, attr := range attrs {
		if attr.Local != want.Local {
			continue
		}
		if attr.Namespace == want.Namespace && (attr.Namespace != "" || attr.Prefix == want.Prefix) {
			return attr, true
		}
	}
	return xmltree.Attr{}, false
}
