// ABOUTME: Property hierarchy path from a field down to a changed leaf
// ABOUTME: Each node pairs a container type with a list index or member name

package model

import "strings"

// PropertyHierarchyNode is one step of a property path. Value is nil only
// for the terminal node recorded when the field itself is the leaf.
type PropertyHierarchyNode struct {
	Type  PropertyType
	Value *string
}

// NewHierarchyNode builds a node with a value.
func NewHierarchyNode(t PropertyType, value string) PropertyHierarchyNode {
	return PropertyHierarchyNode{Type: t, Value: &value}
}

// NewTerminalNode builds a node without a value.
func NewTerminalNode(t PropertyType) PropertyHierarchyNode {
	return PropertyHierarchyNode{Type: t}
}

// String renders the node as {type,value}.
func (n PropertyHierarchyNode) String() string {
	value := "null"
	if n.Value != nil {
		value = *n.Value
	}
	return "{" + string(n.Type) + "," + value + "}"
}

// Hierarchy is an ordered root-to-leaf property path.
type Hierarchy []PropertyHierarchyNode

// String renders the path as [{type,value}, ...].
func (h Hierarchy) String() string {
	parts := make([]string, len(h))
	for i, n := range h {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
