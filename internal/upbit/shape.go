package upbit

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ShapeKind is the top-level JSON type a response is expected to have.
type ShapeKind int

const (
	ShapeAny ShapeKind = iota
	ShapeObject
	ShapeArray
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "any"
	}
}

// Shape is a light structural expectation on a response payload. Required
// fields are checked on the object, or on every element of the array.
type Shape struct {
	Kind     ShapeKind
	Required []string
}

// Validate checks raw against the shape. The zero Shape accepts any valid JSON.
func (s Shape) Validate(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return &SchemaError{Message: "response is not valid JSON", Body: raw}
	}
	result := gjson.ParseBytes(raw)

	switch s.Kind {
	case ShapeObject:
		if !result.IsObject() {
			return &SchemaError{Message: fmt.Sprintf("expected object, got %s", describe(result)), Body: raw}
		}
		return s.checkFields(result, "", raw)
	case ShapeArray:
		if !result.IsArray() {
			return &SchemaError{Message: fmt.Sprintf("expected array, got %s", describe(result)), Body: raw}
		}
		for i, item := range result.Array() {
			if !item.IsObject() && len(s.Required) > 0 {
				return &SchemaError{Message: fmt.Sprintf("element %d: expected object, got %s", i, describe(item)), Body: raw}
			}
			if err := s.checkFields(item, fmt.Sprintf("element %d: ", i), raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Shape) checkFields(obj gjson.Result, prefix string, raw []byte) error {
	for _, field := range s.Required {
		if !obj.Get(field).Exists() {
			return &SchemaError{Message: fmt.Sprintf("%smissing field %q", prefix, field), Body: raw}
		}
	}
	return nil
}

func describe(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	}
	return "unknown"
}
