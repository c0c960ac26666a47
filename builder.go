package aioconf

import (
	"errors"
	"fmt"
	"os"
)

// ValidatorFunc validates a resolved snapshot at the end of the build. It
// returns an error to fail resolution.
type ValidatorFunc func(s *Snapshot) error

// Builder provides a fluent interface for assembling a spec, its sources,
// and resolve options, then resolving in one call.
type Builder struct {
	spec       *Spec
	specPath   string
	args       []string
	env        *EnvSource
	files      []string
	opts       ResolveOptions
	lenient    bool
	validators []ValidatorFunc
	err        error
}

// NewBuilder creates a builder pre-configured with the process argv, the
// process environment, and the default precedence.
func NewBuilder() *Builder {
	return &Builder{
		args: os.Args[1:],
		opts: DefaultResolveOptions(),
	}
}

// WithSpec sets the spec tree to resolve against.
func (b *Builder) WithSpec(spec *Spec) *Builder {
	b.spec = spec
	return b
}

// WithSpecFile loads the spec tree from a JSON spec document.
func (b *Builder) WithSpecFile(path string) *Builder {
	b.specPath = path
	return b
}

// WithStructDefaults derives the spec tree from a tagged struct carrying
// default values. See SpecFromStruct.
func (b *Builder) WithStructDefaults(defaults any) *Builder {
	spec, err := SpecFromStruct(defaults)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.spec = spec
	return b
}

// WithArgs sets the command-line arguments (default: os.Args[1:]).
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithEnviron snapshots the process environment as the env source. This is
// the default when no WithEnv call overrides it.
func (b *Builder) WithEnviron() *Builder {
	b.env = Environ()
	return b
}

// WithEnv sets an explicit environment mapping, replacing the process
// environment. Useful for tests.
func (b *Builder) WithEnv(env map[string]string) *Builder {
	b.env = EnvFromMap(env)
	return b
}

// WithFile appends a configuration file source. Among several files the
// one added first has the highest priority within the file tier.
func (b *Builder) WithFile(paths ...string) *Builder {
	b.files = append(b.files, paths...)
	return b
}

// WithOrigins sets the precedence order for source tiers.
func (b *Builder) WithOrigins(origins ...Origin) *Builder {
	b.opts.Origins = origins
	return b
}

// Strict makes per-option problems (coercion failures, missing required
// options) fatal.
func (b *Builder) Strict() *Builder {
	b.opts.Strict = true
	return b
}

// LenientFiles treats any unreadable or unparsable configuration file as
// an empty source instead of failing resolution. By default only a missing
// file (ErrFileNotFound) is tolerated; parse failures propagate.
func (b *Builder) LenientFiles() *Builder {
	b.lenient = true
	return b
}

// WithValidator adds a validation function run against the resolved
// snapshot. Validators run in the order they were added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Resolve assembles the sources and resolves the configuration.
func (b *Builder) Resolve() (*Snapshot, error) {
	if b.err != nil {
		return nil, b.err
	}

	spec := b.spec
	if spec == nil && b.specPath != "" {
		loaded, err := LoadSpecFile(b.specPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	if spec == nil {
		return nil, fmt.Errorf("no spec provided: use WithSpec, WithSpecFile, or WithStructDefaults")
	}

	var sources []Source

	cli, err := ParseArgs(b.args)
	if err != nil {
		return nil, err
	}
	sources = append(sources, cli)

	env := b.env
	if env == nil {
		env = Environ()
	}
	sources = append(sources, env)

	for _, path := range b.files {
		file, err := LoadFile(path)
		if err != nil {
			if b.lenient || errors.Is(err, ErrFileNotFound) {
				continue
			}
			return nil, err
		}
		sources = append(sources, file)
	}

	snap, err := ResolveWithOptions(spec, sources, b.opts)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(snap); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return snap, nil
}

// MustResolve is like Resolve but panics on error.
func (b *Builder) MustResolve() *Snapshot {
	snap, err := b.Resolve()
	if err != nil {
		panic(fmt.Sprintf("config resolution failed: %v", err))
	}
	return snap
}

// ResolveInto resolves the configuration and scans the whole snapshot into
// the provided struct pointer.
func (b *Builder) ResolveInto(target any) error {
	snap, err := b.Resolve()
	if err != nil {
		return err
	}
	if err := snap.Scan("", target); err != nil {
		return fmt.Errorf("failed to scan resolved config into target: %w", err)
	}
	return nil
}
