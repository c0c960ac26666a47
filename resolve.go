package aioconf

import (
	"errors"
	"fmt"
)

// ResolveOptions configures how sources are merged.
type ResolveOptions struct {
	// Origins defines the precedence order (first = highest priority).
	// Sources sharing an origin keep their declaration order, so among
	// several file sources the one supplied first wins.
	// Default: [OriginCLI, OriginEnv, OriginFile, OriginDefault].
	Origins []Origin

	// Strict turns per-option problems (coercion failures, missing
	// required options) into a fatal resolution error instead of
	// collecting them on the snapshot.
	Strict bool
}

// DefaultResolveOptions returns the standard precedence:
// CLI > environment > files > defaults.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		Origins: []Origin{OriginCLI, OriginEnv, OriginFile, OriginDefault},
	}
}

// Resolve merges the supplied sources against the spec with the default
// precedence and returns a new immutable snapshot. Resolution is a pure
// function of its inputs: the adapters have already read argv, the
// environment, and any files, so Resolve performs no I/O and concurrent
// calls need no coordination.
func Resolve(spec *Spec, sources ...Source) (*Snapshot, error) {
	return ResolveWithOptions(spec, sources, DefaultResolveOptions())
}

// ResolveWithOptions is Resolve with explicit precedence and strictness.
//
// For every option the tiers in opts.Origins are walked in order; the first
// source supplying a non-absent value wins and lower tiers are not
// consulted. An explicit "" or 0 therefore beats any lower-priority value.
// A winning value that fails coercion settles the option on its typed
// default and records a *CoercionError; it does not fall through to lower
// tiers, so a typo in a flag value cannot silently pick up a stale file
// value.
func ResolveWithOptions(spec *Spec, sources []Source, opts ResolveOptions) (*Snapshot, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil spec")
	}
	if len(opts.Origins) == 0 {
		opts.Origins = DefaultResolveOptions().Origins
	}

	snap := resolveSpec(spec, "", sources, opts)

	if opts.Strict {
		if problems := snap.Problems(); len(problems) > 0 {
			return nil, errors.Join(problems...)
		}
	}
	return snap, nil
}

func resolveSpec(spec *Spec, prefix string, sources []Source, opts ResolveOptions) *Snapshot {
	snap := &Snapshot{
		values: make(map[string]any, len(spec.Options)),
		subs:   make(map[string]*Snapshot, len(spec.Subconfigs)),
	}

	spec.walkLevel(func(name string, opt *Option) {
		path := joinPath(prefix, name)
		value, problems := resolveOption(path, opt, sources, opts)
		snap.values[name] = value
		snap.problems = append(snap.problems, problems...)
	})

	for name, sub := range spec.Subconfigs {
		snap.subs[name] = resolveSpec(sub, joinPath(prefix, name), sources, opts)
	}

	return snap
}

// resolveOption walks the precedence tiers for one descriptor.
func resolveOption(path string, opt *Option, sources []Source, opts ResolveOptions) (any, []error) {
	for _, origin := range opts.Origins {
		if origin == OriginDefault {
			if opt.Default == nil {
				continue
			}
			var problems []error
			if opt.Required {
				problems = append(problems, fmt.Errorf("required option %q was not supplied by any source", path))
			}
			return defaultFor(opt), problems
		}

		key := lookupKey(origin, path, opt)
		if key == "" {
			// No binding for this tier: guaranteed miss
			continue
		}

		for _, src := range sources {
			if src.Origin() != origin {
				continue
			}
			raw := src.Lookup(key)
			if raw.IsAbsent() {
				continue
			}

			value, err := coerce(raw, opt.Type)
			if err != nil {
				return defaultFor(opt), []error{&CoercionError{
					Path:   path,
					Origin: origin,
					Value:  raw.Interface(),
					Type:   opt.Type,
					Cause:  err,
				}}
			}
			return value, nil
		}
	}

	// No tier supplied a value and defaults were not consulted
	var problems []error
	if opt.Required {
		problems = append(problems, fmt.Errorf("required option %q was not supplied by any source", path))
	}
	return nil, problems
}

// lookupKey derives the key an origin tier is queried with: the normalized
// CLI flag, the environment variable name, or the dotted path for files.
func lookupKey(origin Origin, path string, opt *Option) string {
	switch origin {
	case OriginCLI:
		return normalizeFlag(opt.CLIFlag)
	case OriginEnv:
		return opt.EnvVar
	case OriginFile:
		return path
	default:
		return ""
	}
}

// defaultFor returns the descriptor's default coerced to its canonical
// type. Coercibility was checked at spec construction, so failures here
// cannot occur for a validated spec.
func defaultFor(opt *Option) any {
	if opt.Default == nil {
		return nil
	}
	value, err := coerce(Typed(opt.Default), opt.Type)
	if err != nil {
		return opt.Default
	}
	return value
}
