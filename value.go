package aioconf

import "fmt"

type valueKind uint8

const (
	kindAbsent valueKind = iota
	kindRaw
	kindTyped
)

// Value is the variant every source adapter emits: absent, a raw string
// awaiting coercion (CLI and environment values, INI fields), or an
// already-typed value (parsed JSON/YAML/TOML nodes). Keeping absence
// explicit lets an empty string or zero from a high-priority source win
// over lower-priority sources.
type Value struct {
	kind  valueKind
	raw   string
	typed any
}

// Absent returns the no-value variant.
func Absent() Value {
	return Value{kind: kindAbsent}
}

// Raw returns a value holding an uncoerced string.
func Raw(s string) Value {
	return Value{kind: kindRaw, raw: s}
}

// Typed returns a value holding a natively typed datum.
func Typed(v any) Value {
	return Value{kind: kindTyped, typed: v}
}

// IsAbsent reports whether the value carries no datum.
func (v Value) IsAbsent() bool {
	return v.kind == kindAbsent
}

// Interface returns the underlying datum: the raw string, the typed value,
// or nil when absent.
func (v Value) Interface() any {
	switch v.kind {
	case kindRaw:
		return v.raw
	case kindTyped:
		return v.typed
	default:
		return nil
	}
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case kindRaw:
		return fmt.Sprintf("raw(%q)", v.raw)
	case kindTyped:
		return fmt.Sprintf("typed(%v)", v.typed)
	default:
		return "absent"
	}
}
