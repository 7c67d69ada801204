package model

import (
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attributes is the open attribute map of a concept. Values are anything
// that survives a JSON round trip.
type Attributes = map[string]interface{}

// ConceptMap maps concept names to their attributes and remembers insertion
// order, so iteration (and therefore "sample" listings) is stable across
// saves and reloads.
type ConceptMap = orderedmap.OrderedMap[string, Attributes]

func NewConceptMap() *ConceptMap {
	return orderedmap.New[string, Attributes]()
}

// ConceptNames returns the names of m in iteration order.
func ConceptNames(m *ConceptMap) []string {
	if m == nil {
		return []string{}
	}
	names := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// CloneConceptMap deep-copies m, keeping its order.
func CloneConceptMap(m *ConceptMap) *ConceptMap {
	out := NewConceptMap()
	if m == nil {
		return out
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, CloneAttributes(pair.Value))
	}
	return out
}

// CloneAttributes deep-copies nested maps and slices. A nil map stays nil.
func CloneAttributes(attrs Attributes) Attributes {
	if attrs == nil {
		return nil
	}
	out := make(Attributes, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return CloneAttributes(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

// ValuesEqual compares two attribute values the way decoded JSON should be
// compared: numbers by numeric value regardless of Go type, everything else
// structurally.
func ValuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
