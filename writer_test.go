package aioconf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func writerSpec(t *testing.T) *Spec {
	t.Helper()
	return MustSpec([]*Option{
		{Name: "debug", Type: TypeBool, Default: false},
		{Name: "tags", Type: TypeStrings, Default: "web,api"},
	}, map[string]*Spec{
		"database": MustSpec([]*Option{
			{Name: "host", Type: TypeString, Default: "localhost"},
		}, map[string]*Spec{
			"pool": MustSpec([]*Option{
				{Name: "size", Type: TypeInt, Default: 10},
			}, nil),
		}),
	})
}

func TestSaveINI(t *testing.T) {
	spec := writerSpec(t)
	snap, err := Resolve(spec, FileFromMap(map[string]any{"debug": true}))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.ini")
	require.NoError(t, snap.SaveINI(path))

	f, err := ini.Load(path)
	require.NoError(t, err)

	// Root options land in the default section
	assert.Equal(t, "true", f.Section(ini.DefaultSection).Key("debug").String())
	assert.Equal(t, "web,api", f.Section(ini.DefaultSection).Key("tags").String())

	// Top-level subconfigs become sections, deeper nesting dotted keys
	assert.Equal(t, "localhost", f.Section("database").Key("host").String())
	assert.Equal(t, "10", f.Section("database").Key("pool.size").String())
}

func TestSaveINISkipsNilValues(t *testing.T) {
	spec := MustSpec([]*Option{
		{Name: "optional", Type: TypeString},
		{Name: "present", Type: TypeString, Default: "yes"},
	}, nil)
	snap, err := Resolve(spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.ini")
	require.NoError(t, snap.SaveINI(path))

	f, err := ini.Load(path)
	require.NoError(t, err)
	assert.False(t, f.Section(ini.DefaultSection).HasKey("optional"))
	assert.Equal(t, "yes", f.Section(ini.DefaultSection).Key("present").String())
}

func TestSaveINIRoundTrip(t *testing.T) {
	spec := writerSpec(t)
	original, err := Resolve(spec, FileFromMap(map[string]any{
		"debug": true,
		"tags":  "a,b,c",
		"database": map[string]any{
			"host": "db.internal",
			"pool": map[string]any{"size": 50},
		},
	}))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.ini")
	require.NoError(t, original.SaveINI(path))

	// Loading the file back through the INI source must reproduce the
	// resolved configuration exactly
	src, err := LoadFile(path)
	require.NoError(t, err)
	restored, err := Resolve(spec, src)
	require.NoError(t, err)
	assert.Empty(t, restored.Problems())

	assert.Equal(t, original.AsMap(), restored.AsMap())
}

func TestSaveTOML(t *testing.T) {
	spec := writerSpec(t)
	snap, err := Resolve(spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.toml")
	require.NoError(t, snap.SaveTOML(path))

	src, err := LoadFile(path)
	require.NoError(t, err)
	restored, err := Resolve(spec, src)
	require.NoError(t, err)
	assert.Equal(t, snap.AsMap(), restored.AsMap())
}

func TestDumpTOML(t *testing.T) {
	spec := writerSpec(t)
	snap, err := Resolve(spec)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, snap.DumpTOML(&buf))
	out := buf.String()
	assert.Contains(t, out, "debug = false")
	assert.Contains(t, out, "[database]")
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	require.NoError(t, atomicWriteFile(path, []byte("first")))
	require.NoError(t, atomicWriteFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())
}
