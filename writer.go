package aioconf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// SaveINI writes the snapshot to an editable INI file atomically.
//
// Flattening convention, bijective with the spec tree's shape: root-level
// options go to the default section, each top-level subconfig becomes a
// section, and deeper nesting uses dotted keys inside its section, so
// "[database]" with "pool.size = 10" round-trips to the dotted path
// "database.pool.size". String lists are joined with the list delimiter.
func (s *Snapshot) SaveINI(path string) error {
	f := ini.Empty()

	if err := writeINISection(f.Section(ini.DefaultSection), "", s.values); err != nil {
		return err
	}

	names := make([]string, 0, len(s.subs))
	for name := range s.subs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		section, err := f.NewSection(name)
		if err != nil {
			return fmt.Errorf("failed to create INI section %q: %w", name, err)
		}
		if err := writeINISection(section, "", s.subs[name].Flatten()); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to render INI: %w", err)
	}
	return atomicWriteFile(path, buf.Bytes())
}

func writeINISection(section *ini.Section, prefix string, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if values[key] == nil {
			// Unsupplied option with no default: nothing to persist
			continue
		}
		if err := writeINIKey(section, joinPath(prefix, key), values[key]); err != nil {
			return err
		}
	}
	return nil
}

func writeINIKey(section *ini.Section, key string, value any) error {
	if _, err := section.NewKey(key, formatScalar(value)); err != nil {
		return fmt.Errorf("failed to write INI key %q: %w", key, err)
	}
	return nil
}

// formatScalar renders a resolved value as the string the INI source will
// coerce back to the same value.
func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ListDelimiter)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SaveTOML writes the snapshot to a TOML file atomically.
func (s *Snapshot) SaveTOML(path string) error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(s.AsMap()); err != nil {
		return fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}
	return atomicWriteFile(path, buf.Bytes())
}

// DumpTOML writes the resolved configuration to w in TOML format, for
// debugging and --dump-config style flags.
func (s *Snapshot) DumpTOML(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	return encoder.Encode(s.AsMap())
}

// atomicWriteFile performs an atomic file write via a temp file and rename.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
