// ABOUTME: PropertyDiff closed sum type and its four variants
// ABOUTME: Simple, list, complex and content diffs nest to mirror a field

package model

import "sort"

// PropertyDiff is a difference on a property value. The variant is fixed
// at creation: *SimplePropertyDiff, *ListPropertyDiff,
// *ComplexPropertyDiff or *ContentPropertyDiff.
type PropertyDiff interface {
	// PropertyType returns the type tag the diff was created for.
	PropertyType() PropertyType
	isPropertyDiff()
}

// NewPropertyDiff creates the empty diff matching a type tag. Types that are
// neither simple, list nor complex produce a content diff.
func NewPropertyDiff(t PropertyType) PropertyDiff {
	switch Classify(t) {
	case Simple:
		return NewSimplePropertyDiff(t, nil, nil)
	case List:
		return NewListPropertyDiff(t)
	case Complex:
		return NewComplexPropertyDiff()
	default:
		return NewContentPropertyDiff()
	}
}

// SimplePropertyDiff holds the two sides of a scalar value. A nil side
// means the value is absent on that side.
type SimplePropertyDiff struct {
	Type  PropertyType
	Left  *string
	Right *string
}

// NewSimplePropertyDiff creates a simple diff.
func NewSimplePropertyDiff(t PropertyType, left, right *string) *SimplePropertyDiff {
	return &SimplePropertyDiff{Type: t, Left: left, Right: right}
}

// PropertyType returns the property type tag.
func (d *SimplePropertyDiff) PropertyType() PropertyType { return d.Type }

func (*SimplePropertyDiff) isPropertyDiff() {}

// ListPropertyDiff maps list indexes to item diffs.
type ListPropertyDiff struct {
	Type  PropertyType
	Diffs map[int]PropertyDiff
}

// NewListPropertyDiff creates an empty list diff.
func NewListPropertyDiff(t PropertyType) *ListPropertyDiff {
	return &ListPropertyDiff{Type: t, Diffs: map[int]PropertyDiff{}}
}

// PropertyType returns the property type tag.
func (d *ListPropertyDiff) PropertyType() PropertyType { return d.Type }

func (*ListPropertyDiff) isPropertyDiff() {}

// Get returns the item diff at index, or nil.
func (d *ListPropertyDiff) Get(index int) PropertyDiff {
	return d.Diffs[index]
}

// Put sets the item diff at index.
func (d *ListPropertyDiff) Put(index int, diff PropertyDiff) {
	d.Diffs[index] = diff
}

// PutAll copies every item diff of other into d.
func (d *ListPropertyDiff) PutAll(other *ListPropertyDiff) {
	for index, diff := range other.Diffs {
		d.Diffs[index] = diff
	}
}

// Indexes returns the item indexes in ascending order.
func (d *ListPropertyDiff) Indexes() []int {
	indexes := make([]int, 0, len(d.Diffs))
	for index := range d.Diffs {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	return indexes
}

// Len returns the number of item diffs.
func (d *ListPropertyDiff) Len() int { return len(d.Diffs) }

// ComplexPropertyDiff maps member names to member diffs.
type ComplexPropertyDiff struct {
	Diffs map[string]PropertyDiff
}

// NewComplexPropertyDiff creates an empty complex diff.
func NewComplexPropertyDiff() *ComplexPropertyDiff {
	return &ComplexPropertyDiff{Diffs: map[string]PropertyDiff{}}
}

// PropertyType returns the property type tag.
func (*ComplexPropertyDiff) PropertyType() PropertyType { return TypeComplex }

func (*ComplexPropertyDiff) isPropertyDiff() {}

// Get returns the member diff, or nil.
func (d *ComplexPropertyDiff) Get(name string) PropertyDiff {
	return d.Diffs[name]
}

// Put sets the member diff.
func (d *ComplexPropertyDiff) Put(name string, diff PropertyDiff) {
	d.Diffs[name] = diff
}

// PutAll copies every member diff of other into d.
func (d *ComplexPropertyDiff) PutAll(other *ComplexPropertyDiff) {
	for name, diff := range other.Diffs {
		d.Diffs[name] = diff
	}
}

// Names returns the member names in ascending order.
func (d *ComplexPropertyDiff) Names() []string {
	names := make([]string, 0, len(d.Diffs))
	for name := range d.Diffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of member diffs.
func (d *ComplexPropertyDiff) Len() int { return len(d.Diffs) }

// ContentPropertyDiff holds the two sides of a blob descriptor and what kind
// of change it is.
type ContentPropertyDiff struct {
	DifferenceType DifferenceType
	Left           ContentProperty
	Right          ContentProperty
}

// NewContentPropertyDiff creates an empty content diff of type Different.
func NewContentPropertyDiff() *ContentPropertyDiff {
	return &ContentPropertyDiff{DifferenceType: Different}
}

// PropertyType returns the property type tag.
func (*ContentPropertyDiff) PropertyType() PropertyType { return TypeContent }

func (*ContentPropertyDiff) isPropertyDiff() {}

// Str returns a pointer to s. Handy for building expected diffs.
func Str(s string) *string {
	return &s
}
