// Package extract recovers a single structured (JSON) document from the free
// text returned by a generation service.
package extract

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the two shapes a Document can take.
type Kind int

const (
	KindObject Kind = iota + 1
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Document is either a single object or an ordered sequence of objects. Leaf
// values are whatever encoding/json produces for them.
type Document struct {
	kind   Kind
	object map[string]any
	array  []map[string]any
}

// ObjectDocument wraps a single object.
func ObjectDocument(obj map[string]any) Document {
	return Document{kind: KindObject, object: obj}
}

// ArrayDocument wraps a sequence of objects.
func ArrayDocument(items []map[string]any) Document {
	return Document{kind: KindArray, array: items}
}

// Kind reports which shape the document has. The zero Document has neither.
func (d Document) Kind() Kind { return d.kind }

// Object returns the document's object when it is one.
func (d Document) Object() (map[string]any, bool) {
	return d.object, d.kind == KindObject
}

// Array returns the document's elements when it is an array.
func (d Document) Array() ([]map[string]any, bool) {
	return d.array, d.kind == KindArray
}

// MarshalJSON encodes the underlying value so a Document can be stored or
// echoed back for diagnostics.
func (d Document) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case KindObject:
		return json.Marshal(d.object)
	case KindArray:
		return json.Marshal(d.array)
	default:
		return []byte("null"), nil
	}
}

// ExtractionError means no parseable document could be located. Raw keeps
// the full response text for diagnosis.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no structured document found in response (%d bytes)", len(e.Raw))
}

// parse decodes s as a complete JSON value and accepts it only if it has the
// wanted shape. An array counts only when every element is an object.
func parse(s string, want Kind) (Document, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return Document{}, false
	}

	switch val := v.(type) {
	case map[string]any:
		if want == KindObject {
			return ObjectDocument(val), true
		}
	case []any:
		if want != KindArray {
			return Document{}, false
		}
		items := make([]map[string]any, 0, len(val))
		for _, elem := range val {
			obj, ok := elem.(map[string]any)
			if !ok {
				return Document{}, false
			}
			items = append(items, obj)
		}
		return ArrayDocument(items), true
	}

	return Document{}, false
}
