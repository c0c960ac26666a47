package aioconf

import (
	"fmt"
	"strings"
)

// CLISource maps normalized flag names to the raw strings present in argv.
// Only flags actually supplied appear in the mapping; a bound flag that was
// not passed is a guaranteed miss for the CLI tier.
type CLISource struct {
	values map[string]string
}

// ParseArgs scans command-line arguments (typically os.Args[1:]) into a CLI
// source. Supported forms are "--key=value", "--key value", and a bare
// "--flag" which records "true". Non-flag arguments and a lone "--"
// separator are skipped so the adapter can share argv with other parsers.
func ParseArgs(args []string) (*CLISource, error) {
	values := make(map[string]string)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" used as a separator
			i++
			continue
		}

		var key string
		var valueStr string

		if strings.Contains(argContent, "=") {
			parts := strings.SplitN(argContent, "=", 2)
			key = parts[0]
			valueStr = parts[1]
			i++
		} else {
			key = argContent
			// A flag followed by another flag or end of args is boolean
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if key == "" {
			continue
		}
		for _, segment := range strings.Split(key, ".") {
			if !isValidKeySegment(segment) {
				return nil, &SourceError{
					Origin: OriginCLI,
					Cause:  fmt.Errorf("invalid flag segment %q in %q", segment, key),
				}
			}
		}

		values[key] = valueStr
	}

	return &CLISource{values: values}, nil
}

// CLIFromMap builds a CLI source from an explicit flag-to-value mapping,
// useful for tests. Keys may carry leading dashes; they are normalized.
func CLIFromMap(m map[string]string) *CLISource {
	values := make(map[string]string, len(m))
	for k, v := range m {
		values[normalizeFlag(k)] = v
	}
	return &CLISource{values: values}
}

// Origin implements the Source interface.
func (s *CLISource) Origin() Origin {
	return OriginCLI
}

// Lookup implements the Source interface. The key is an option's cli_arg;
// leading dashes are stripped before matching.
func (s *CLISource) Lookup(key string) Value {
	v, ok := s.values[normalizeFlag(key)]
	if !ok {
		return Absent()
	}
	return Raw(v)
}

// normalizeFlag strips the leading dashes from a flag spelling so that
// "--db-port", "-db-port" and "db-port" all address the same entry.
func normalizeFlag(flag string) string {
	return strings.TrimLeft(flag, "-")
}
