package aioconf

import (
	"os"
	"strings"
)

// EnvSource maps environment variable names to their string values. The
// mapping is snapshotted when the source is constructed; resolution never
// reads the process environment.
type EnvSource struct {
	values map[string]string
}

// Environ snapshots the current process environment into an env source.
func Environ() *EnvSource {
	environ := os.Environ()
	values := make(map[string]string, len(environ))
	for _, pair := range environ {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		values[k] = v
	}
	return &EnvSource{values: values}
}

// EnvFromMap builds an env source from an explicit mapping, enabling
// deterministic tests without touching the process environment.
func EnvFromMap(m map[string]string) *EnvSource {
	values := make(map[string]string, len(m))
	for k, v := range m {
		values[k] = v
	}
	return &EnvSource{values: values}
}

// Origin implements the Source interface.
func (s *EnvSource) Origin() Origin {
	return OriginEnv
}

// Lookup implements the Source interface. The key is an option's env_var.
func (s *EnvSource) Lookup(key string) Value {
	v, ok := s.values[key]
	if !ok {
		return Absent()
	}
	return Raw(v)
}
