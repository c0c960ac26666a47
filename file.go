package aioconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// FileSource maps dotted option paths to the values parsed from one
// configuration file. JSON, YAML, and TOML leaves stay natively typed; INI
// fields are raw strings.
type FileSource struct {
	path   string
	values map[string]Value
}

// LoadFile reads and parses a configuration file, detecting the format from
// the extension and falling back to content sniffing. A missing file yields
// a *SourceError wrapping ErrFileNotFound so callers can opt into treating
// it as an empty source.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &SourceError{Origin: OriginFile, Path: path, Cause: ErrFileNotFound}
		}
		return nil, &SourceError{Origin: OriginFile, Path: path, Cause: err}
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, &SourceError{Origin: OriginFile, Path: path,
				Cause: fmt.Errorf("unable to determine config format")}
		}
	}

	src, err := parseFileData(data, format)
	if err != nil {
		return nil, &SourceError{Origin: OriginFile, Path: path, Cause: err}
	}
	src.path = path
	return src, nil
}

// FromReader parses configuration data from a reader in an explicit format.
// FormatAuto sniffs the content.
func FromReader(r io.Reader, format Format) (*FileSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &SourceError{Origin: OriginFile, Cause: err}
	}

	if format == FormatAuto || format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, &SourceError{Origin: OriginFile,
				Cause: fmt.Errorf("unable to determine config format")}
		}
	}

	src, err := parseFileData(data, format)
	if err != nil {
		return nil, &SourceError{Origin: OriginFile, Cause: err}
	}
	return src, nil
}

// FileFromMap builds a file source from an already-nested mapping, useful
// for tests and for callers with their own parsers.
func FileFromMap(m map[string]any) *FileSource {
	values := make(map[string]Value)
	for path, v := range flattenMap(m, "") {
		values[path] = Typed(v)
	}
	return &FileSource{values: values}
}

// Origin implements the Source interface.
func (s *FileSource) Origin() Origin {
	return OriginFile
}

// Lookup implements the Source interface. The key is an option's dotted
// path.
func (s *FileSource) Lookup(key string) Value {
	v, ok := s.values[key]
	if !ok {
		return Absent()
	}
	return v
}

// Path returns the file the source was loaded from, if any.
func (s *FileSource) Path() string {
	return s.path
}

func parseFileData(data []byte, format Format) (*FileSource, error) {
	switch format {
	case FormatJSON:
		nested := make(map[string]any)
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&nested); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return typedFileSource(nested), nil

	case FormatYAML:
		nested := make(map[string]any)
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return typedFileSource(normalizeYAML(nested)), nil

	case FormatTOML:
		nested := make(map[string]any)
		if err := toml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		return typedFileSource(nested), nil

	case FormatINI:
		return parseINIData(data)

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func typedFileSource(nested map[string]any) *FileSource {
	values := make(map[string]Value)
	for path, v := range flattenMap(nested, "") {
		values[path] = Typed(v)
	}
	return &FileSource{values: values}
}

// parseINIData flattens a two-level INI document into dotted paths: keys in
// the default section land at the root, and every other section name
// prefixes its keys. Section and key names may themselves be dotted, which
// is how deeper nesting round-trips through SaveINI. INI fields are
// strings, so they enter the mapping as raw values.
func parseINIData(data []byte) (*FileSource, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse INI: %w", err)
	}

	values := make(map[string]Value)
	for _, section := range f.Sections() {
		prefix := ""
		if section.Name() != ini.DefaultSection {
			prefix = section.Name()
		}
		for _, key := range section.Keys() {
			values[joinPath(prefix, key.Name())] = Raw(key.Value())
		}
	}
	return &FileSource{values: values}, nil
}

// normalizeYAML rewrites map[any]any nodes (which yaml.v3 can produce for
// non-string keys) into map[string]any so the flattening helpers apply.
func normalizeYAML(nested map[string]any) map[string]any {
	out := make(map[string]any, len(nested))
	for k, v := range nested {
		out[k] = normalizeYAMLValue(v)
	}
	return out
}

func normalizeYAMLValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return normalizeYAML(tv)
	case map[any]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLValue(val)
		}
		return out
	case []any:
		for i, el := range tv {
			tv[i] = normalizeYAMLValue(el)
		}
		return tv
	default:
		return v
	}
}

// detectFileFormat determines format from the file extension.
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml", ".tml":
		return FormatTOML
	case ".ini":
		return FormatINI
	case ".conf", ".config":
		// Try to detect from content
		return ""
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect the format by parsing.
// JSON is tried first as the strictest grammar, then TOML, then YAML
// (a superset of JSON), then INI.
func detectFormatFromContent(data []byte) Format {
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	if _, err := ini.Load(data); err == nil {
		return FormatINI
	}

	return ""
}
