// ABOUTME: Property type tags and their classification
// ABOUTME: Pure static lookup, no registry or runtime state

package model

// PropertyType is the raw type tag read from an exported element.
type PropertyType string

// Simple types
const (
	TypeUndefined PropertyType = "undefined"
	TypeString    PropertyType = "string"
	TypeBoolean   PropertyType = "boolean"
	TypeDate      PropertyType = "date"
	TypeInteger   PropertyType = "integer"
	TypeLong      PropertyType = "long"
	TypeDouble    PropertyType = "double"
	TypeBinary    PropertyType = "binary"
)

// Structured types
const (
	TypeContent     PropertyType = "content"
	TypeComplex     PropertyType = "complex"
	TypeScalarList  PropertyType = "scalarList"
	TypeComplexList PropertyType = "complexList"
	TypeContentList PropertyType = "contentList"
)

// Category is the shape class of a property type.
type Category uint8

const (
	Undefined Category = iota
	Simple
	List
	Complex
	Content
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Simple:
		return "simple"
	case List:
		return "list"
	case Complex:
		return "complex"
	case Content:
		return "content"
	default:
		return "undefined"
	}
}

// Classify returns the category of a type tag. Unknown tags, the empty tag
// and "undefined" are Undefined.
func Classify(t PropertyType) Category {
	switch t {
	case TypeString, TypeBoolean, TypeDate, TypeInteger, TypeLong, TypeDouble, TypeBinary:
		return Simple
	case TypeScalarList, TypeComplexList, TypeContentList:
		return List
	case TypeComplex:
		return Complex
	case TypeContent:
		return Content
	default:
		return Undefined
	}
}

// Category returns the category of t.
func (t PropertyType) Category() Category {
	return Classify(t)
}

// IsSimple reports whether the type is in the Simple category.
func (t PropertyType) IsSimple() bool { return Classify(t) == Simple }

// IsList reports whether the type is in the List category.
func (t PropertyType) IsList() bool { return Classify(t) == List }

// IsComplex reports whether the type is in the Complex category.
func (t PropertyType) IsComplex() bool { return Classify(t) == Complex }

// IsContent reports whether the type is in the Content category.
func (t PropertyType) IsContent() bool { return Classify(t) == Content }

// OrUndefined maps the empty tag to TypeUndefined.
func (t PropertyType) OrUndefined() PropertyType {
	if t == "" {
		return TypeUndefined
	}
	return t
}
