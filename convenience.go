package aioconf

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Quick resolves a spec against the process argv, the process environment,
// and an optional configuration file, with the standard precedence
// CLI > env > file > default. A missing file is not an error. This is the
// recommended entry point for most applications.
func Quick(spec *Spec, configFile string) (*Snapshot, error) {
	b := NewBuilder().WithSpec(spec).WithEnviron()
	if configFile != "" {
		b = b.WithFile(configFile)
	}
	return b.Resolve()
}

// MustQuick is like Quick but panics on error.
func MustQuick(spec *Spec, configFile string) *Snapshot {
	snap, err := Quick(spec, configFile)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return snap
}

// QuickArgs is Quick with explicit argv and environment, for callers that
// own their process surface (or tests).
func QuickArgs(spec *Spec, args []string, env map[string]string, configFile string) (*Snapshot, error) {
	b := NewBuilder().WithSpec(spec).WithArgs(args).WithEnv(env)
	if configFile != "" {
		b = b.WithFile(configFile)
	}
	return b.Resolve()
}

// Debug returns a formatted string showing all resolved values and any
// recorded per-option problems.
func (s *Snapshot) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString("Resolved values:\n")

	flat := s.Flatten()
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		b.WriteString(fmt.Sprintf("  %s: %v\n", path, flat[path]))
	}

	if problems := s.Problems(); len(problems) > 0 {
		b.WriteString("Problems:\n")
		for _, p := range problems {
			b.WriteString(fmt.Sprintf("  %v\n", p))
		}
	}

	return b.String()
}

// Dump writes the resolved configuration to stdout in TOML format.
func (s *Snapshot) Dump() error {
	return s.DumpTOML(os.Stdout)
}
