// ABOUTME: Tests for the diff data model
// ABOUTME: Verifies type classification, the factory and encoding shape

package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		tag  PropertyType
		want Category
	}{
		{TypeString, Simple},
		{TypeBoolean, Simple},
		{TypeDate, Simple},
		{TypeInteger, Simple},
		{TypeLong, Simple},
		{TypeDouble, Simple},
		{TypeBinary, Simple},
		{TypeScalarList, List},
		{TypeComplexList, List},
		{TypeContentList, List},
		{TypeComplex, Complex},
		{TypeContent, Content},
		{TypeUndefined, Undefined},
		{"", Undefined},
		{"blob", Undefined},
	}

	for _, tt := range tests {
		if got := Classify(tt.tag); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.tag, got, tt.want)
		}
	}

	if !TypeInteger.IsSimple() || TypeInteger.IsList() || TypeInteger.IsComplex() || TypeInteger.IsContent() {
		t.Errorf("integer should only be simple")
	}
	if TypeUndefined.IsSimple() || TypeUndefined.IsList() || TypeUndefined.IsComplex() || TypeUndefined.IsContent() {
		t.Errorf("undefined should match no category")
	}
}

func TestNewPropertyDiff(t *testing.T) {
	if d, ok := NewPropertyDiff(TypeDate).(*SimplePropertyDiff); !ok || d.Type != TypeDate {
		t.Errorf("Expected simple date diff, got %#v", d)
	}
	if d, ok := NewPropertyDiff(TypeComplexList).(*ListPropertyDiff); !ok || d.Type != TypeComplexList {
		t.Errorf("Expected complexList diff, got %#v", d)
	}
	if _, ok := NewPropertyDiff(TypeComplex).(*ComplexPropertyDiff); !ok {
		t.Errorf("Expected complex diff")
	}
	if d, ok := NewPropertyDiff(TypeContent).(*ContentPropertyDiff); !ok || d.DifferenceType != Different {
		t.Errorf("Expected content diff of type different")
	}

	// Undefined falls through to content.
	if _, ok := NewPropertyDiff(TypeUndefined).(*ContentPropertyDiff); !ok {
		t.Errorf("Expected undefined to produce a content diff")
	}
}

func TestContentSubProperties(t *testing.T) {
	var c ContentProperty
	if !c.IsEmpty() {
		t.Fatalf("Zero content property should be empty")
	}

	if !c.SetSubProperty(SubPropertyFilename, Str("a.txt")) {
		t.Fatalf("filename should be a known sub-property")
	}
	if c.SetSubProperty("data", Str("blob")) {
		t.Errorf("data should not be a known sub-property")
	}
	if got := c.SubProperty(SubPropertyFilename); got == nil || *got != "a.txt" {
		t.Errorf("Expected a.txt, got %v", got)
	}
	if c.SubProperty(SubPropertyDigest) != nil {
		t.Errorf("Digest should be absent")
	}
	if c.IsEmpty() {
		t.Errorf("Content property with a filename should not be empty")
	}
}

func TestHierarchyString(t *testing.T) {
	h := Hierarchy{
		NewHierarchyNode(TypeComplexList, "1"),
		NewHierarchyNode(TypeComplex, "firstname"),
		NewTerminalNode(TypeString),
	}
	want := "[{complexList,1}, {complex,firstname}, {string,null}]"
	if got := h.String(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestSchemaAndDocumentDiff(t *testing.T) {
	doc := NewDocumentDiff()
	if !doc.IsEmpty() {
		t.Fatalf("New document diff should be empty")
	}

	schema := doc.InitSchema("dublincore")
	if doc.InitSchema("dublincore") != schema {
		t.Errorf("InitSchema should return the existing schema diff")
	}
	schema.PutField("title", NewSimplePropertyDiff(TypeString, Str("joe"), Str("jack")))
	doc.InitSchema("common").PutField("size", NewSimplePropertyDiff(TypeLong, Str("1"), nil))

	if doc.SchemaCount() != 2 {
		t.Errorf("Expected 2 schemas, got %d", doc.SchemaCount())
	}
	if !reflect.DeepEqual(doc.SchemaNames(), []string{"common", "dublincore"}) {
		t.Errorf("Unexpected schema names %v", doc.SchemaNames())
	}
	if schema.FieldCount() != 1 || schema.Field("title") == nil || schema.Field("missing") != nil {
		t.Errorf("Unexpected field lookup results")
	}
}

func TestListAndComplexHelpers(t *testing.T) {
	list := NewListPropertyDiff(TypeScalarList)
	list.Put(2, NewSimplePropertyDiff(TypeString, Str("a"), nil))

	other := NewListPropertyDiff(TypeScalarList)
	other.Put(0, NewSimplePropertyDiff(TypeString, nil, Str("b")))
	list.PutAll(other)

	if !reflect.DeepEqual(list.Indexes(), []int{0, 2}) {
		t.Errorf("Unexpected indexes %v", list.Indexes())
	}

	complexDiff := NewComplexPropertyDiff()
	complexDiff.Put("zeta", list)
	complexDiff.Put("alpha", NewContentPropertyDiff())
	if !reflect.DeepEqual(complexDiff.Names(), []string{"alpha", "zeta"}) {
		t.Errorf("Unexpected names %v", complexDiff.Names())
	}
	if complexDiff.PropertyType() != TypeComplex {
		t.Errorf("Complex diff should report the complex type")
	}
}

func TestEncodeShape(t *testing.T) {
	content := NewContentPropertyDiff()
	content.DifferenceType = DifferentFilename
	content.Left.Filename = Str("test_joe.txt")
	content.Right.Filename = Str("test_jack.txt")

	encoded := Encode(content)
	want := map[string]any{
		"type":           "content",
		"differenceType": "differentFilename",
		"left":           map[string]any{"filename": "test_joe.txt"},
		"right":          map[string]any{"filename": "test_jack.txt"},
	}
	if !reflect.DeepEqual(encoded, want) {
		t.Errorf("Unexpected encoding:\n got %#v\nwant %#v", encoded, want)
	}

	simple := Encode(NewSimplePropertyDiff(TypeString, Str("joe"), nil))
	if simple["right"] != nil || simple["left"] != "joe" {
		t.Errorf("Unexpected simple encoding %#v", simple)
	}
}

func TestJSONDecodesToSameModel(t *testing.T) {
	list := NewListPropertyDiff(TypeComplexList)
	item := NewComplexPropertyDiff()
	item.Put("firstname", NewSimplePropertyDiff(TypeString, Str("John"), Str("Bob")))
	list.Put(1, item)

	doc := NewDocumentDiff()
	doc.InitSchema("complextypes").PutField("complexList", list)

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	decoded := NewDocumentDiff()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, doc) {
		t.Errorf("Decoded diff differs:\n got %#v\nwant %#v", decoded, doc)
	}
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	if _, err := Decode("not an object"); err == nil {
		t.Errorf("Expected error for non-object diff")
	}
	if _, err := Decode(map[string]any{"type": "scalarList", "items": map[string]any{"x": map[string]any{}}}); err == nil {
		t.Errorf("Expected error for non-integer list index")
	}
	if _, err := DecodeDocumentDiff(map[string]any{"schemas": "nope"}); err == nil {
		t.Errorf("Expected error for non-object schemas")
	}
}
