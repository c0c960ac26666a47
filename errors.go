package aioconf

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by snapshot lookups when a dotted path does
	// not correspond to any descriptor in the originating spec.
	ErrNotFound = errors.New("path not found")

	// ErrFileNotFound is reported by the file adapter when the requested
	// configuration file does not exist. Callers can detect it with
	// errors.Is to treat a missing file as an empty source.
	ErrFileNotFound = errors.New("config file not found")
)

// SpecError reports a malformed or ambiguous spec document. Spec
// construction aborts on the first SpecError; no partial spec tree is
// ever returned.
type SpecError struct {
	Path   string // dotted path of the offending option or subconfig, "" for the root
	Reason string
}

// Error implements the error interface.
func (e *SpecError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid spec: %s", e.Reason)
	}
	return fmt.Sprintf("invalid spec at %q: %s", e.Path, e.Reason)
}

// CoercionError reports a value that a source supplied but that cannot be
// converted to the option's declared type. Coercion errors are collected
// per option on the snapshot rather than aborting resolution; strict mode
// promotes them to a fatal error.
type CoercionError struct {
	Path   string // dotted option path
	Origin Origin // source tier that supplied the value
	Value  any    // the raw value as supplied
	Type   Type   // declared option type
	Cause  error
}

// Error implements the error interface.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v (%s source) to %s for %q: %v",
		e.Value, e.Origin, e.Type, e.Path, e.Cause)
}

// Unwrap supports errors.Is and errors.As.
func (e *CoercionError) Unwrap() error {
	return e.Cause
}

// SourceError reports an adapter that failed to read or parse its
// underlying medium.
type SourceError struct {
	Origin Origin
	Path   string // file path or other medium identifier, "" if not applicable
	Cause  error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s source: %v", e.Origin, e.Cause)
	}
	return fmt.Sprintf("%s source %q: %v", e.Origin, e.Path, e.Cause)
}

// Unwrap supports errors.Is and errors.As.
func (e *SourceError) Unwrap() error {
	return e.Cause
}
