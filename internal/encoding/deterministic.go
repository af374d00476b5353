// Package encoding produces byte-identical JSON for artifacts and hash inputs.
// Object keys are sorted lexicographically, separators carry no whitespace,
// HTML characters are not escaped, UUIDs render as canonical lowercase
// hyphenated strings, and enum values render as their string value. Unlike a
// plain json.Marshal of domain structs, empty lists and empty strings are
// kept: an artifact must spell out "required_controls":[] rather than omit it.
package encoding

import (
	"bytes"
	"encoding"
	"encoding/json"
	"reflect"
	"strings"
)

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(normalize(v)); err != nil {
		return nil, err
	}

	// Encode appends a newline; artifacts are hashed without it.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// normalize rewrites v into maps and slices so that json.Marshal's sorted map
// key order applies everywhere. Types carrying their own marshaling (uuid.UUID
// via TextMarshaler, for one) are treated as leaves.
func normalize(v any) any {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	typ := val.Type()
	if typ.Implements(jsonMarshalerType) || typ.Implements(textMarshalerType) ||
		reflect.PointerTo(typ).Implements(jsonMarshalerType) || reflect.PointerTo(typ).Implements(textMarshalerType) {
		return val.Interface()
	}

	switch val.Kind() {
	case reflect.Map:
		return normalizeMap(val)
	case reflect.Slice, reflect.Array:
		return normalizeSlice(val)
	case reflect.Struct:
		return normalizeStruct(val)
	case reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return normalize(val.Interface())
	case reflect.String:
		return val.String()
	default:
		return val.Interface()
	}
}

func normalizeMap(val reflect.Value) any {
	out := make(map[string]any, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		out[keyString(iter.Key())] = normalize(iter.Value().Interface())
	}
	return out
}

func keyString(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	if tm, ok := key.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	return key.String()
}

// normalizeSlice maps nil and empty slices to an empty JSON array, never null.
func normalizeSlice(val reflect.Value) any {
	n := val.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = normalize(val.Index(i).Interface())
	}
	return out
}

func normalizeStruct(val reflect.Value) any {
	out := make(map[string]any)
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omit := fieldName(field)
		if name == "-" {
			continue
		}

		fv := val.Field(i)
		if omit && fv.IsZero() {
			continue
		}
		out[name] = normalize(fv.Interface())
	}
	return out
}

func fieldName(field reflect.StructField) (name string, omitEmpty bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}
