package aioconf

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type is the declared type tag of an option. The tag strings are what the
// JSON spec document carries.
type Type string

const (
	TypeBool    Type = "bool"
	TypeInt     Type = "int"
	TypeFloat   Type = "float"
	TypeString  Type = "string"
	TypeStrings Type = "strings" // list of strings
)

// ListDelimiter splits a single raw string into a TypeStrings value and is
// the join character the INI writer uses, keeping save/load bijective.
const ListDelimiter = ","

// knownType reports whether t is a recognized type tag.
func knownType(t Type) bool {
	switch t {
	case TypeBool, TypeInt, TypeFloat, TypeString, TypeStrings:
		return true
	}
	return false
}

// coerce converts a source value to the declared option type. It is total
// over the raw and typed variants: every non-absent input either yields a
// value of the canonical Go type (bool, int64, float64, string, []string)
// or an error. Coercing an already-canonical value returns it unchanged.
func coerce(v Value, t Type) (any, error) {
	if v.IsAbsent() {
		return nil, fmt.Errorf("cannot coerce absent value")
	}

	switch t {
	case TypeBool:
		return coerceBool(v)
	case TypeInt:
		return coerceInt(v)
	case TypeFloat:
		return coerceFloat(v)
	case TypeString:
		return coerceString(v)
	case TypeStrings:
		return coerceStrings(v)
	default:
		return nil, fmt.Errorf("unknown type tag %q", t)
	}
}

func coerceBool(v Value) (any, error) {
	if v.kind == kindRaw {
		return parseBoolToken(v.raw)
	}

	switch tv := v.typed.(type) {
	case bool:
		return tv, nil
	case string:
		return parseBoolToken(tv)
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", tv.String())
		}
		return f != 0, nil
	}

	rv := reflect.ValueOf(v.typed)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return nil, fmt.Errorf("cannot convert %T to bool", v.typed)
}

// parseBoolToken accepts the usual textual booleans case-insensitively.
func parseBoolToken(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return nil, fmt.Errorf("invalid boolean %q", s)
}

func coerceInt(v Value) (any, error) {
	if v.kind == kindRaw {
		return parseIntString(v.raw)
	}

	switch tv := v.typed.(type) {
	case string:
		return parseIntString(tv)
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return i, nil
		}
		f, err := tv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", tv.String())
		}
		if f != float64(int64(f)) {
			return nil, fmt.Errorf("float %v is not an integer", f)
		}
		return int64(f), nil
	}

	rv := reflect.ValueOf(v.typed)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(^uint64(0)>>1) {
			return nil, fmt.Errorf("unsigned value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != float64(int64(f)) {
			return nil, fmt.Errorf("float %v is not an integer", f)
		}
		return int64(f), nil
	}
	return nil, fmt.Errorf("cannot convert %T to int", v.typed)
}

func parseIntString(s string) (any, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return i, nil
}

func coerceFloat(v Value) (any, error) {
	if v.kind == kindRaw {
		return parseFloatString(v.raw)
	}

	switch tv := v.typed.(type) {
	case string:
		return parseFloatString(tv)
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", tv.String())
		}
		return f, nil
	}

	rv := reflect.ValueOf(v.typed)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("cannot convert %T to float", v.typed)
}

func parseFloatString(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float %q: %w", s, err)
	}
	return f, nil
}

func coerceString(v Value) (any, error) {
	if v.kind == kindRaw {
		return v.raw, nil
	}

	switch tv := v.typed.(type) {
	case string:
		return tv, nil
	case json.Number:
		return tv.String(), nil
	case bool:
		return strconv.FormatBool(tv), nil
	case fmt.Stringer:
		return tv.String(), nil
	}

	rv := reflect.ValueOf(v.typed)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("cannot convert %T to string", v.typed)
}

func coerceStrings(v Value) (any, error) {
	if v.kind == kindRaw {
		return splitList(v.raw), nil
	}

	switch tv := v.typed.(type) {
	case string:
		return splitList(tv), nil
	case []string:
		// Copied so no snapshot aliases the caller's (or the spec's) slice
		out := make([]string, len(tv))
		copy(out, tv)
		return out, nil
	case []any:
		out := make([]string, 0, len(tv))
		for _, el := range tv {
			s, err := coerceString(Typed(el))
			if err != nil {
				return nil, fmt.Errorf("element %v: %w", el, err)
			}
			out = append(out, s.(string))
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot convert %T to string list", v.typed)
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ListDelimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
