package aioconf

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Snapshot is the resolved, typed configuration produced by Resolve. It
// mirrors the spec tree's shape: top-level option values plus nested
// sub-snapshots. A snapshot is immutable; re-resolving produces a new one.
type Snapshot struct {
	values   map[string]any
	subs     map[string]*Snapshot
	problems []error
}

// Problems returns the per-option errors recorded during resolution
// (coercion failures, missing required options) for this snapshot and all
// sub-snapshots. An empty slice means every option resolved cleanly.
func (s *Snapshot) Problems() []error {
	problems := append([]error(nil), s.problems...)

	names := make([]string, 0, len(s.subs))
	for name := range s.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		problems = append(problems, s.subs[name].Problems()...)
	}
	return problems
}

// AsMap returns the resolved configuration as a fully nested plain mapping.
// The returned map is a copy; mutating it does not affect the snapshot.
func (s *Snapshot) AsMap() map[string]any {
	out := make(map[string]any, len(s.values)+len(s.subs))
	for name, value := range s.values {
		if ss, ok := value.([]string); ok {
			cp := make([]string, len(ss))
			copy(cp, ss)
			out[name] = cp
			continue
		}
		out[name] = value
	}
	for name, sub := range s.subs {
		out[name] = sub.AsMap()
	}
	return out
}

// Flatten returns the resolved configuration keyed by dotted paths.
func (s *Snapshot) Flatten() map[string]any {
	return flattenMap(s.AsMap(), "")
}

// Sub returns the sub-snapshot resolved for a nested subconfig.
func (s *Snapshot) Sub(name string) (*Snapshot, error) {
	sub, ok := s.subs[name]
	if !ok {
		return nil, fmt.Errorf("subconfig %q: %w", name, ErrNotFound)
	}
	return sub, nil
}

// Get retrieves the resolved value at a dotted path. The path must address
// an option descriptor in the originating spec; anything else reports
// ErrNotFound.
func (s *Snapshot) Get(path string) (any, error) {
	segments := strings.Split(path, ".")
	cur := s
	for _, segment := range segments[:len(segments)-1] {
		sub, ok := cur.subs[segment]
		if !ok {
			return nil, fmt.Errorf("path %q: %w", path, ErrNotFound)
		}
		cur = sub
	}

	value, ok := cur.values[segments[len(segments)-1]]
	if !ok {
		return nil, fmt.Errorf("path %q: %w", path, ErrNotFound)
	}
	return value, nil
}

// String retrieves a string value at a dotted path, converting from common
// scalar types when the resolved value isn't already a string.
func (s *Snapshot) String(path string) (string, error) {
	val, err := s.Get(path)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}
	return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
}

// Int64 retrieves an integer value at a dotted path.
func (s *Snapshot) Int64(path string) (int64, error) {
	val, err := s.Get(path)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return 0, fmt.Errorf("value for path %s is nil, cannot convert to int64", path)
	}

	out, cerr := coerceInt(Typed(val))
	if cerr != nil {
		return 0, fmt.Errorf("path %s: %w", path, cerr)
	}
	return out.(int64), nil
}

// Bool retrieves a boolean value at a dotted path.
func (s *Snapshot) Bool(path string) (bool, error) {
	val, err := s.Get(path)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, fmt.Errorf("value for path %s is nil, cannot convert to bool", path)
	}

	out, cerr := coerceBool(Typed(val))
	if cerr != nil {
		return false, fmt.Errorf("path %s: %w", path, cerr)
	}
	return out.(bool), nil
}

// Float64 retrieves a float value at a dotted path.
func (s *Snapshot) Float64(path string) (float64, error) {
	val, err := s.Get(path)
	if err != nil {
		return 0.0, err
	}
	if val == nil {
		return 0.0, fmt.Errorf("value for path %s is nil, cannot convert to float64", path)
	}

	out, cerr := coerceFloat(Typed(val))
	if cerr != nil {
		return 0.0, fmt.Errorf("path %s: %w", path, cerr)
	}
	return out.(float64), nil
}

// Strings retrieves a string-list value at a dotted path. A scalar string
// is split on the list delimiter.
func (s *Snapshot) Strings(path string) ([]string, error) {
	val, err := s.Get(path)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, fmt.Errorf("value for path %s is nil, cannot convert to string list", path)
	}

	out, cerr := coerceStrings(Typed(val))
	if cerr != nil {
		return nil, fmt.Errorf("path %s: %w", path, cerr)
	}
	return out.([]string), nil
}
