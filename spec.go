package aioconf

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Option describes one configurable value: its declared type, compile-time
// default, and the environment variable and CLI flag bound to it. An option
// with no EnvVar contributes no environment-tier value; likewise CLIFlag
// for the CLI tier.
type Option struct {
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Default  any    `json:"default,omitempty"`
	EnvVar   string `json:"env_var,omitempty"`
	CLIFlag  string `json:"cli_arg,omitempty"`
	Required bool   `json:"required,omitempty"`
	Help     string `json:"help,omitempty"`
}

// Spec is a named, possibly nested collection of option descriptors. It is
// authored once, validated on construction, and treated as immutable from
// then on; Resolve never mutates it.
type Spec struct {
	Options    map[string]*Option `json:"options"`
	Subconfigs map[string]*Spec   `json:"subconfigs,omitempty"`
}

// NewSpec builds a validated spec from explicit options and subconfigs.
// Construction fails with *SpecError on a duplicate option name at the same
// level, an option/subconfig name collision, an unknown type tag, an
// invalid path segment, a default not coercible to the declared type, or a
// subconfig cycle.
func NewSpec(options []*Option, subconfigs map[string]*Spec) (*Spec, error) {
	s := &Spec{
		Options:    make(map[string]*Option, len(options)),
		Subconfigs: subconfigs,
	}
	if s.Subconfigs == nil {
		s.Subconfigs = make(map[string]*Spec)
	}

	for _, opt := range options {
		if opt == nil {
			return nil, &SpecError{Reason: "nil option"}
		}
		if _, dup := s.Options[opt.Name]; dup {
			return nil, &SpecError{Path: opt.Name, Reason: "duplicate option name"}
		}
		s.Options[opt.Name] = opt
	}

	if err := s.validate("", make(map[*Spec]bool)); err != nil {
		return nil, err
	}
	return s, nil
}

// MustSpec is like NewSpec but panics on error. Intended for specs authored
// as package-level literals.
func MustSpec(options []*Option, subconfigs map[string]*Spec) *Spec {
	s, err := NewSpec(options, subconfigs)
	if err != nil {
		panic(fmt.Sprintf("aioconf: invalid spec: %v", err))
	}
	return s
}

// ParseSpec deserializes a JSON spec document of the shape
//
//	{"options": {name: {"type", "default", "env_var", "cli_arg", ...}},
//	 "subconfigs": {name: <nested document>}}
//
// The "name" field inside each option entry may be omitted; it is filled
// from the entry's key. An explicit "name" that collides with another entry
// at the same level is a duplicate and fails with *SpecError.
func ParseSpec(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &SpecError{Reason: fmt.Sprintf("malformed document: %v", err)}
	}

	if err := s.normalize(); err != nil {
		return nil, err
	}
	if err := s.validate("", make(map[*Spec]bool)); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSpecFile reads and parses a JSON spec document from disk.
func LoadSpecFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file '%s': %w", path, err)
	}
	return ParseSpec(data)
}

// JSON serializes the spec back to its document form. ParseSpec followed by
// JSON is a fixed point for canonical documents.
func (s *Spec) JSON() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spec: %w", err)
	}
	return data, nil
}

// SaveFile writes the spec document to disk atomically, indented for
// hand editing.
func (s *Spec) SaveFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}
	return atomicWriteFile(path, append(data, '\n'))
}

// Lookup returns the option descriptor at a dotted path, descending
// through subconfigs.
func (s *Spec) Lookup(path string) (*Option, bool) {
	segments := strings.Split(path, ".")
	cur := s
	for _, segment := range segments[:len(segments)-1] {
		sub, ok := cur.Subconfigs[segment]
		if !ok {
			return nil, false
		}
		cur = sub
	}
	opt, ok := cur.Options[segments[len(segments)-1]]
	return opt, ok
}

// normalize fills option names from their map keys and rekeys entries whose
// explicit name disagrees with their key, detecting duplicates introduced
// by the rekeying.
func (s *Spec) normalize() error {
	rekeyed := make(map[string]*Option, len(s.Options))
	for key, opt := range s.Options {
		if opt == nil {
			return &SpecError{Path: key, Reason: "null option entry"}
		}
		if opt.Name == "" {
			opt.Name = key
		}
		if _, dup := rekeyed[opt.Name]; dup {
			return &SpecError{Path: opt.Name, Reason: "duplicate option name"}
		}
		if opt.Name != key {
			if _, clash := s.Options[opt.Name]; clash {
				return &SpecError{Path: opt.Name, Reason: "duplicate option name"}
			}
		}
		rekeyed[opt.Name] = opt
	}
	s.Options = rekeyed

	for _, sub := range s.Subconfigs {
		if sub == nil {
			continue
		}
		if sub.Options == nil {
			sub.Options = make(map[string]*Option)
		}
		if sub.Subconfigs == nil {
			sub.Subconfigs = make(map[string]*Spec)
		}
		if err := sub.normalize(); err != nil {
			return err
		}
	}
	return nil
}

// validate enforces the structural invariants. onPath tracks spec nodes on
// the path from the root so a spec can never contain itself as a
// descendant.
func (s *Spec) validate(prefix string, onPath map[*Spec]bool) error {
	if onPath[s] {
		return &SpecError{Path: prefix, Reason: "subconfig cycle detected"}
	}
	onPath[s] = true
	defer delete(onPath, s)

	for name, opt := range s.Options {
		path := joinPath(prefix, name)

		if !isValidKeySegment(name) {
			return &SpecError{Path: path, Reason: fmt.Sprintf("invalid option name %q", name)}
		}
		if !knownType(opt.Type) {
			return &SpecError{Path: path, Reason: fmt.Sprintf("unknown type tag %q", opt.Type)}
		}
		if _, clash := s.Subconfigs[name]; clash {
			return &SpecError{Path: path, Reason: "option and subconfig share a name"}
		}
		if opt.Default != nil {
			if _, err := coerce(Typed(opt.Default), opt.Type); err != nil {
				return &SpecError{Path: path, Reason: fmt.Sprintf("default not coercible to %s: %v", opt.Type, err)}
			}
		}
	}

	for name, sub := range s.Subconfigs {
		path := joinPath(prefix, name)
		if !isValidKeySegment(name) {
			return &SpecError{Path: path, Reason: fmt.Sprintf("invalid subconfig name %q", name)}
		}
		if sub == nil {
			return &SpecError{Path: path, Reason: "null subconfig"}
		}
		if err := sub.validate(path, onPath); err != nil {
			return err
		}
	}
	return nil
}

// walkLevel visits this level's options in deterministic (sorted) order.
func (s *Spec) walkLevel(fn func(name string, opt *Option)) {
	names := make([]string, 0, len(s.Options))
	for name := range s.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn(name, s.Options[name])
	}
}

// walk visits every option descriptor in the tree in deterministic
// (sorted) order, passing its full dotted path.
func (s *Spec) walk(prefix string, fn func(path string, opt *Option)) {
	s.walkLevel(func(name string, opt *Option) {
		fn(joinPath(prefix, name), opt)
	})

	subNames := make([]string, 0, len(s.Subconfigs))
	for name := range s.Subconfigs {
		subNames = append(subNames, name)
	}
	sort.Strings(subNames)
	for _, name := range subNames {
		s.Subconfigs[name].walk(joinPath(prefix, name), fn)
	}
}

// Paths returns the dotted paths of all options in the spec, sorted.
func (s *Spec) Paths() []string {
	var paths []string
	s.walk("", func(path string, _ *Option) {
		paths = append(paths, path)
	})
	return paths
}
