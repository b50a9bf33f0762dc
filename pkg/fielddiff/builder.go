// ABOUTME: Field diff builder folding located differences into a document diff
// ABOUTME: Descends the property hierarchy, then applies the change by kind

package fielddiff

import (
	"fmt"
	"strconv"

	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/xmldiff"
	"github.com/nainya/docdiff/pkg/xmltree"
)

// Apply folds a field difference into doc. Existing schema and field diffs
// are reused, so several differences on the same field merge into one
// nested diff. Any error leaves the comparison unusable.
func Apply(doc *model.DocumentDiff, fd *FieldDifference) error {
	if len(fd.Hierarchy) == 0 {
		return fmt.Errorf("%w: field %s/%s", ErrEmptyHierarchy, fd.Schema, fd.Field)
	}

	firstType := fd.Hierarchy[0].Type
	schemaDiff := doc.InitSchema(fd.Schema)

	fieldDiff := schemaDiff.Field(fd.Field)
	if fieldDiff == nil {
		fieldDiff = model.NewPropertyDiff(firstType)
	}

	end := fieldDiff
	if !firstType.IsSimple() {
		var err error
		if end, err = ApplyHierarchy(fieldDiff, fd.Hierarchy); err != nil {
			return fmt.Errorf("field %s/%s: %w", fd.Schema, fd.Field, err)
		}
	}

	var err error
	switch fd.Kind {
	case xmldiff.TextValue:
		err = applyTextValue(end, fd)
	case xmldiff.ChildNodeNotFound:
		err = applyChildNodeNotFound(end, fd)
	case xmldiff.HasChildNodes:
		err = applyHasChildNodes(end, fd)
	default:
		err = applyTextValue(end, fd)
	}
	if err != nil {
		return fmt.Errorf("field %s/%s: %w", fd.Schema, fd.Field, err)
	}

	schemaDiff.PutField(fd.Field, fieldDiff)
	return nil
}

// ApplyHierarchy descends from the field diff along the hierarchy, creating
// list items and complex members on demand, and returns the container the
// change goes into.
func ApplyHierarchy(fieldDiff model.PropertyDiff, hierarchy model.Hierarchy) (model.PropertyDiff, error) {
	if len(hierarchy) == 0 {
		return nil, ErrEmptyHierarchy
	}

	first := hierarchy[0].Type
	if (first.IsSimple() || first.IsContent()) && len(hierarchy) > 1 {
		return nil, fmt.Errorf("%w: %s cannot hold %s", ErrInconsistentHierarchy, first, hierarchy[1:])
	}

	current := fieldDiff
	for i := 1; i < len(hierarchy); i++ {
		step := hierarchy[i-1]
		childType := hierarchy[i].Type
		if step.Value == nil {
			return nil, fmt.Errorf("%w: %s has no value in %s", ErrInconsistentHierarchy, step, hierarchy)
		}

		switch step.Type.Category() {
		case model.List:
			list, ok := current.(*model.ListPropertyDiff)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not a list diff", ErrInconsistentHierarchy, step)
			}
			index, err := strconv.Atoi(*step.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: list index %q", ErrInconsistentHierarchy, *step.Value)
			}
			child := list.Get(index)
			if child == nil {
				child = model.NewPropertyDiff(childType)
				list.Put(index, child)
			}
			current = child
		case model.Complex:
			complexDiff, ok := current.(*model.ComplexPropertyDiff)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not a complex diff", ErrInconsistentHierarchy, step)
			}
			child := complexDiff.Get(*step.Value)
			if child == nil {
				child = model.NewPropertyDiff(childType)
				complexDiff.Put(*step.Value, child)
			}
			current = child
		default:
			return nil, fmt.Errorf("%w: %s cannot hold %s", ErrInconsistentHierarchy, step, hierarchy[i:])
		}
	}
	return current, nil
}

// applyTextValue records a changed text value. The control text node's
// parent element names the changed member.
func applyTextValue(end model.PropertyDiff, fd *FieldDifference) error {
	control := fd.Control.Node
	if !control.Valid() {
		return fmt.Errorf("%w: %s without a control node", ErrInvalidDifference, fd.Kind)
	}
	doc := control.Doc
	parent := doc.Parent(control.ID)
	if parent == xmltree.InvalidNode {
		return fmt.Errorf("%w: %s control node has no parent", ErrInvalidDifference, fd.Kind)
	}

	left, right := fd.Control.Value, fd.Test.Value
	parentType := PropertyTypeOf(doc, parent)

	switch d := end.(type) {
	case *model.SimplePropertyDiff:
		d.Left, d.Right = &left, &right
	case *model.ListPropertyDiff:
		d.Put(doc.ElementPosition(parent), model.NewSimplePropertyDiff(parentType, &left, &right))
	case *model.ComplexPropertyDiff:
		d.Put(doc.LocalName(parent), model.NewSimplePropertyDiff(parentType, &left, &right))
	case *model.ContentPropertyDiff:
		setContentSubProperty(d, doc.LocalName(parent), &left, &right)
	}
	return nil
}

// applyChildNodeNotFound records a node present on one side only. Only a
// list can gain or lose items.
func applyChildNodeNotFound(end model.PropertyDiff, fd *FieldDifference) error {
	child, hasControl := fd.Test.Node, false
	if !child.Valid() {
		child, hasControl = fd.Control.Node, true
	}
	if !child.Valid() {
		return fmt.Errorf("%w: %s without any node", ErrInvalidDifference, fd.Kind)
	}

	switch d := end.(type) {
	case *model.ListPropertyDiff:
		d.Put(child.Doc.ElementPosition(child.ID), childNodeDiff(child, hasControl))
		return nil
	case *model.SimplePropertyDiff:
		return fmt.Errorf("%w: a %s difference should never be found within a simple type", ErrInvalidDifference, fd.Kind)
	case *model.ComplexPropertyDiff:
		return fmt.Errorf("%w: a %s difference should never be found within a complex type", ErrInvalidDifference, fd.Kind)
	default:
		return fmt.Errorf("%w: a %s difference should never be found within a content type", ErrInvalidDifference, fd.Kind)
	}
}

// applyHasChildNodes records a node that has children on one side only.
func applyHasChildNodes(end model.PropertyDiff, fd *FieldDifference) error {
	hasControl := fd.Control.Value == "true"
	node := fd.Test.Node
	if hasControl {
		node = fd.Control.Node
	}
	if !node.Valid() {
		return fmt.Errorf("%w: %s without the node holding children", ErrInvalidDifference, fd.Kind)
	}
	nodeType := PropertyTypeOf(node.Doc, node.ID)

	switch d := end.(type) {
	case *model.SimplePropertyDiff:
		setSimpleSide(d, node, hasControl)
	case *model.ListPropertyDiff:
		childDiff := childNodeDiff(node, hasControl)
		if items, ok := childDiff.(*model.ListPropertyDiff); ok && nodeType.IsList() {
			d.PutAll(items)
		} else {
			d.Put(node.Doc.ElementPosition(node.ID), childDiff)
		}
	case *model.ComplexPropertyDiff:
		childDiff := childNodeDiff(node, hasControl)
		if members, ok := childDiff.(*model.ComplexPropertyDiff); ok && nodeType.IsComplex() {
			d.PutAll(members)
		} else {
			d.Put(node.Doc.LocalName(node.ID), childDiff)
		}
	case *model.ContentPropertyDiff:
		if nodeType.IsContent() {
			if content, ok := childNodeDiff(node, hasControl).(*model.ContentPropertyDiff); ok {
				d.Left, d.Right = content.Left, content.Right
			}
		} else {
			setContentSide(d, node, hasControl)
		}
	}
	return nil
}

// childNodeDiff materializes a whole subtree on the side it exists on.
func childNodeDiff(ref xmldiff.NodeRef, hasControl bool) model.PropertyDiff {
	doc := ref.Doc
	t := PropertyTypeOf(doc, ref.ID)
	diff := model.NewPropertyDiff(t)

	switch d := diff.(type) {
	case *model.SimplePropertyDiff:
		setSimpleSide(d, ref, hasControl)
	case *model.ListPropertyDiff:
		for i, child := range doc.ElementChildren(ref.ID) {
			d.Put(i, childNodeDiff(xmldiff.NodeRef{Doc: doc, ID: child}, hasControl))
		}
	case *model.ComplexPropertyDiff:
		for _, child := range doc.ElementChildren(ref.ID) {
			d.Put(doc.LocalName(child), childNodeDiff(xmldiff.NodeRef{Doc: doc, ID: child}, hasControl))
		}
	case *model.ContentPropertyDiff:
		for _, child := range doc.ElementChildren(ref.ID) {
			setContentSide(d, xmldiff.NodeRef{Doc: doc, ID: child}, hasControl)
		}
	}
	return diff
}

func setSimpleSide(d *model.SimplePropertyDiff, ref xmldiff.NodeRef, hasControl bool) {
	value := ref.Doc.TextContent(ref.ID)
	if hasControl {
		d.Left, d.Right = &value, nil
	} else {
		d.Left, d.Right = nil, &value
	}
}

// setContentSide records one blob sub-property node on the side it exists on.
func setContentSide(d *model.ContentPropertyDiff, ref xmldiff.NodeRef, hasControl bool) {
	value := ref.Doc.TextContent(ref.ID)
	left, right := &value, (*string)(nil)
	if !hasControl {
		left, right = nil, &value
	}
	setContentSubProperty(d, ref.Doc.LocalName(ref.ID), left, right)
}

// setContentSubProperty sets a sub-property on both sides and updates the
// difference type. A filename change after a digest change, or the reverse,
// makes the blob plainly different.
func setContentSubProperty(d *model.ContentPropertyDiff, name string, left, right *string) {
	d.Left.SetSubProperty(name, left)
	d.Right.SetSubProperty(name, right)

	switch name {
	case model.SubPropertyFilename:
		if d.DifferenceType == model.DifferentDigest {
			d.DifferenceType = model.Different
		} else {
			d.DifferenceType = model.DifferentFilename
		}
	case model.SubPropertyDigest:
		if d.DifferenceType == model.DifferentFilename {
			d.DifferenceType = model.Different
		} else {
			d.DifferenceType = model.DifferentDigest
		}
	}
}
