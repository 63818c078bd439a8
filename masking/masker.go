package masking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// DefaultMarker replaces redacted values
const DefaultMarker = "--REDACTED--"

// Masker replaces the values of configured fields with a marker
type Masker struct {
	selectors [][]string
	marker    string
}

// Option configures a Masker
type Option func(*Masker)

// WithMarker sets the value written in place of redacted fields
func WithMarker(marker string) Option {
	return func(m *Masker) {
		m.marker = marker
	}
}

// New creates a masker for the given selectors. Empty selectors are ignored.
func New(selectors []string, options ...Option) *Masker {
	m := &Masker{marker: DefaultMarker}
	for _, opt := range options {
		opt(m)
	}

	for _, selector := range selectors {
		segments := parseSelector(selector)
		if len(segments) == 0 {
			continue
		}
		m.selectors = append(m.selectors, segments)
	}

	return m
}

// Fields returns the selectors the masker was built from, normalised
func (m *Masker) Fields() []string {
	fields := make([]string, 0, len(m.selectors))
	for _, segments := range m.selectors {
		fields = append(fields, strings.Join(segments, "."))
	}
	return fields
}

// Marker returns the redaction marker
func (m *Masker) Marker() string {
	return m.marker
}

// Enabled reports whether the masker redacts anything
func (m *Masker) Enabled() bool {
	return m != nil && len(m.selectors) > 0
}

// Apply returns a masked copy of value. A nil or empty masker returns value as is.
func (m *Masker) Apply(value any) any {
	if !m.Enabled() {
		return value
	}
	return m.walk(normalize(value), nil)
}

func (m *Masker) walk(value any, path []string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			childPath := append(path[:len(path):len(path)], strings.ToLower(key))
			if m.matches(childPath) {
				out[key] = m.marker
				continue
			}
			out[key] = m.walk(child, childPath)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = m.walk(child, path)
		}
		return out
	default:
		return v
	}
}

func (m *Masker) matches(path []string) bool {
	for _, segments := range m.selectors {
		if len(segments) > len(path) {
			continue
		}
		offset := len(path) - len(segments)
		matched := true
		for i, segment := range segments {
			if path[offset+i] != segment {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func parseSelector(selector string) []string {
	selector = strings.TrimSpace(selector)
	selector = strings.TrimPrefix(selector, "$.")
	if selector == "" {
		return nil
	}

	var segments []string
	for _, segment := range strings.Split(selector, ".") {
		segment = strings.ToLower(strings.TrimSpace(segment))
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// normalize converts value into the generic JSON shape (map[string]any, []any,
// scalars) without touching the original.
func normalize(value any) any {
	switch v := value.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = normalize(child)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = child
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = child
		}
		return out
	case json.RawMessage:
		return decode(v)
	case []byte:
		if json.Valid(v) {
			return decode(v)
		}
		return string(v)
	case error:
		return v.Error()
	}

	data, err := json.Marshal(value)
	if err != nil {
		// Never fall back to the printed value: it would bypass the selectors.
		return reflectValue(reflect.ValueOf(value), 0)
	}
	return decode(data)
}

// maxReflectDepth bounds the reflection walk on cyclic pointers.
const maxReflectDepth = 32

// reflectValue builds the generic JSON shape of values encoding/json rejects,
// such as structs holding NaN floats, funcs or channels.
func reflectValue(rv reflect.Value, depth int) any {
	if !rv.IsValid() {
		return nil
	}
	if depth > maxReflectDepth {
		return unloggable(rv.Type())
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return reflectValue(rv.Elem(), depth+1)
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		typ := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name, skip := fieldName(field)
			if skip {
				continue
			}
			out[name] = reflectValue(rv.Field(i), depth+1)
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key()
			name := fmt.Sprint(key.Interface())
			if key.Kind() == reflect.String {
				name = key.String()
			}
			out[name] = reflectValue(iter.Value(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			return normalize(rv.Bytes())
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = reflectValue(rv.Index(i), depth+1)
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	default:
		return unloggable(rv.Type())
	}
}

// fieldName returns the JSON name of a struct field, honouring its json tag.
func fieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return field.Name, false
}

func unloggable(typ reflect.Type) string {
	return fmt.Sprintf("<unloggable %s>", typ)
}

func decode(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return string(data)
	}
	return out
}
