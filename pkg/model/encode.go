// ABOUTME: Generic map encoding of diffs for JSON, YAML and protobuf Struct
// ABOUTME: Decoding restores the typed model from the same shape

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrDecode indicates an encoded diff has an unexpected shape.
var ErrDecode = errors.New("cannot decode diff")

// Encoding keys
const (
	keySchemas        = "schemas"
	keyFields         = "fields"
	keyType           = "type"
	keyLeft           = "left"
	keyRight          = "right"
	keyItems          = "items"
	keyDifferenceType = "differenceType"
)

// Map encodes the document diff as nested generic maps. Only strings, nil
// and map[string]any appear in the result.
func (d *DocumentDiff) Map() map[string]any {
	schemas := make(map[string]any, len(d.Schemas))
	for name, schema := range d.Schemas {
		schemas[name] = schema.Map()
	}
	return map[string]any{keySchemas: schemas}
}

// Map encodes the schema diff.
func (s *SchemaDiff) Map() map[string]any {
	fields := make(map[string]any, len(s.Fields))
	for name, diff := range s.Fields {
		fields[name] = Encode(diff)
	}
	return map[string]any{keyFields: fields}
}

// MarshalJSON encodes the document diff through Map.
func (d *DocumentDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// UnmarshalJSON decodes what MarshalJSON produced.
func (d *DocumentDiff) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeDocumentDiff(raw)
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}

// Encode encodes a property diff. Every encoded diff carries its type tag.
func Encode(diff PropertyDiff) map[string]any {
	switch d := diff.(type) {
	case *SimplePropertyDiff:
		return map[string]any{
			keyType:  string(d.Type),
			keyLeft:  optional(d.Left),
			keyRight: optional(d.Right),
		}
	case *ListPropertyDiff:
		items := make(map[string]any, len(d.Diffs))
		for index, item := range d.Diffs {
			items[strconv.Itoa(index)] = Encode(item)
		}
		return map[string]any{keyType: string(d.Type), keyItems: items}
	case *ComplexPropertyDiff:
		fields := make(map[string]any, len(d.Diffs))
		for name, member := range d.Diffs {
			fields[name] = Encode(member)
		}
		return map[string]any{keyType: string(TypeComplex), keyFields: fields}
	case *ContentPropertyDiff:
		return map[string]any{
			keyType:           string(TypeContent),
			keyDifferenceType: string(d.DifferenceType),
			keyLeft:           encodeContent(d.Left),
			keyRight:          encodeContent(d.Right),
		}
	}
	return nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func encodeContent(c ContentProperty) map[string]any {
	out := map[string]any{}
	for _, name := range SubPropertyNames() {
		if v := c.SubProperty(name); v != nil {
			out[name] = *v
		}
	}
	return out
}

// DecodeDocumentDiff decodes what Map produced.
func DecodeDocumentDiff(raw map[string]any) (*DocumentDiff, error) {
	doc := NewDocumentDiff()
	schemas, err := mapAt(raw, keySchemas)
	if err != nil {
		return nil, err
	}
	for name, rawSchema := range schemas {
		schemaMap, ok := rawSchema.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: schema %q is not an object", ErrDecode, name)
		}
		fields, err := mapAt(schemaMap, keyFields)
		if err != nil {
			return nil, err
		}
		schema := doc.InitSchema(name)
		for field, rawField := range fields {
			diff, err := Decode(rawField)
			if err != nil {
				return nil, fmt.Errorf("field %s/%s: %w", name, field, err)
			}
			schema.PutField(field, diff)
		}
	}
	return doc, nil
}

// Decode decodes what Encode produced.
func Decode(raw any) (PropertyDiff, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: property diff is not an object", ErrDecode)
	}
	tag, _ := m[keyType].(string)
	t := PropertyType(tag).OrUndefined()

	switch d := NewPropertyDiff(t).(type) {
	case *SimplePropertyDiff:
		d.Left = stringAt(m, keyLeft)
		d.Right = stringAt(m, keyRight)
		return d, nil
	case *ListPropertyDiff:
		items, err := mapAt(m, keyItems)
		if err != nil {
			return nil, err
		}
		for key, rawItem := range items {
			index, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("%w: list index %q", ErrDecode, key)
			}
			item, err := Decode(rawItem)
			if err != nil {
				return nil, err
			}
			d.Put(index, item)
		}
		return d, nil
	case *ComplexPropertyDiff:
		fields, err := mapAt(m, keyFields)
		if err != nil {
			return nil, err
		}
		for name, rawMember := range fields {
			member, err := Decode(rawMember)
			if err != nil {
				return nil, err
			}
			d.Put(name, member)
		}
		return d, nil
	case *ContentPropertyDiff:
		if dt, ok := m[keyDifferenceType].(string); ok && dt != "" {
			d.DifferenceType = DifferenceType(dt)
		}
		d.Left = decodeContent(m[keyLeft])
		d.Right = decodeContent(m[keyRight])
		return d, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %q", ErrDecode, t)
}

func mapAt(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	out, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object", ErrDecode, key)
	}
	return out, nil
}

func stringAt(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

func decodeContent(raw any) ContentProperty {
	var c ContentProperty
	m, ok := raw.(map[string]any)
	if !ok {
		return c
	}
	for _, name := range SubPropertyNames() {
		c.SetSubProperty(name, stringAt(m, name))
	}
	return c
}
