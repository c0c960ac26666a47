package aioconf

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSpecValidation tests spec construction edge cases
func TestNewSpecValidation(t *testing.T) {
	tests := []struct {
		name        string
		options     []*Option
		subconfigs  map[string]*Spec
		expectError bool
		errorMsg    string
	}{
		{
			name:    "ValidFlatSpec",
			options: []*Option{{Name: "debug", Type: TypeBool, Default: false}},
		},
		{
			name: "DuplicateOptionName",
			options: []*Option{
				{Name: "port", Type: TypeInt, Default: 1},
				{Name: "port", Type: TypeInt, Default: 2},
			},
			expectError: true,
			errorMsg:    "duplicate option name",
		},
		{
			name:        "UnknownTypeTag",
			options:     []*Option{{Name: "port", Type: "decimal"}},
			expectError: true,
			errorMsg:    "unknown type tag",
		},
		{
			name:        "InvalidOptionName",
			options:     []*Option{{Name: "bad name", Type: TypeString}},
			expectError: true,
			errorMsg:    "invalid option name",
		},
		{
			name:        "DefaultNotCoercible",
			options:     []*Option{{Name: "port", Type: TypeInt, Default: "not-a-number"}},
			expectError: true,
			errorMsg:    "default not coercible",
		},
		{
			name:    "OptionSubconfigCollision",
			options: []*Option{{Name: "database", Type: TypeString, Default: ""}},
			subconfigs: map[string]*Spec{
				"database": MustSpec([]*Option{{Name: "host", Type: TypeString, Default: "x"}}, nil),
			},
			expectError: true,
			errorMsg:    "share a name",
		},
		{
			name:    "ValidNestedSpec",
			options: []*Option{{Name: "debug", Type: TypeBool, Default: false}},
			subconfigs: map[string]*Spec{
				"database": MustSpec([]*Option{
					{Name: "host", Type: TypeString, Default: "localhost"},
					{Name: "port", Type: TypeInt, Default: 3306},
				}, nil),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewSpec(tt.options, tt.subconfigs)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				var specErr *SpecError
				assert.ErrorAs(t, err, &specErr)
				assert.Nil(t, spec)
			} else {
				require.NoError(t, err)
				require.NotNil(t, spec)
			}
		})
	}
}

// TestSpecCycleDetection tests that a spec cannot contain itself
func TestSpecCycleDetection(t *testing.T) {
	inner := &Spec{
		Options:    map[string]*Option{"x": {Name: "x", Type: TypeInt, Default: 1}},
		Subconfigs: map[string]*Spec{},
	}
	inner.Subconfigs["self"] = inner

	_, err := NewSpec(nil, map[string]*Spec{"inner": inner})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

// TestSpecSharedSubtree verifies that two siblings may share one subtree;
// only a node on its own ancestor path is a cycle
func TestSpecSharedSubtree(t *testing.T) {
	shared := MustSpec([]*Option{{Name: "host", Type: TypeString, Default: "a"}}, nil)
	_, err := NewSpec(nil, map[string]*Spec{"primary": shared, "replica": shared})
	assert.NoError(t, err)
}

// TestParseSpec tests deserialization of JSON spec documents
func TestParseSpec(t *testing.T) {
	t.Run("ValidDocument", func(t *testing.T) {
		doc := `{
			"options": {
				"debug": {"type": "bool", "default": false, "env_var": "APP_DEBUG", "cli_arg": "--debug"}
			},
			"subconfigs": {
				"database": {
					"options": {
						"host": {"type": "string", "default": "localhost"},
						"port": {"type": "int", "default": 3306, "env_var": "DB_PORT", "cli_arg": "--db-port"}
					}
				}
			}
		}`
		spec, err := ParseSpec([]byte(doc))
		require.NoError(t, err)

		opt, ok := spec.Lookup("database.port")
		require.True(t, ok)
		assert.Equal(t, TypeInt, opt.Type)
		assert.Equal(t, "DB_PORT", opt.EnvVar)
		assert.Equal(t, "--db-port", opt.CLIFlag)

		// Name filled from the entry key
		opt, ok = spec.Lookup("debug")
		require.True(t, ok)
		assert.Equal(t, "debug", opt.Name)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := ParseSpec([]byte(`{"options": [`))
		require.Error(t, err)
		var specErr *SpecError
		assert.ErrorAs(t, err, &specErr)
	})

	t.Run("UnknownTypeTag", func(t *testing.T) {
		_, err := ParseSpec([]byte(`{"options": {"x": {"type": "uint128"}}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type tag")
	})

	t.Run("DuplicateViaExplicitName", func(t *testing.T) {
		doc := `{"options": {
			"a": {"name": "b", "type": "string", "default": ""},
			"b": {"type": "string", "default": ""}
		}}`
		_, err := ParseSpec([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate option name")
	})
}

// TestSpecRoundTrip verifies serialize(deserialize(d)) is a fixed point
func TestSpecRoundTrip(t *testing.T) {
	spec := MustSpec([]*Option{
		{Name: "debug", Type: TypeBool, Default: false, EnvVar: "APP_DEBUG", CLIFlag: "--debug"},
		{Name: "tags", Type: TypeStrings, Default: []string{"a", "b"}},
	}, map[string]*Spec{
		"database": MustSpec([]*Option{
			{Name: "port", Type: TypeInt, Default: 3306, Required: true},
		}, nil),
	})

	first, err := spec.JSON()
	require.NoError(t, err)

	reparsed, err := ParseSpec(first)
	require.NoError(t, err)

	second, err := reparsed.JSON()
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))

	// And the reparsed tree behaves identically
	assert.Equal(t, spec.Paths(), reparsed.Paths())
}

// TestSpecFileIO tests saving and loading spec documents
func TestSpecFileIO(t *testing.T) {
	spec := MustSpec([]*Option{
		{Name: "listen", Type: TypeString, Default: ":8080", Help: "listen address"},
	}, nil)

	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, spec.SaveFile(path))

	loaded, err := LoadSpecFile(path)
	require.NoError(t, err)

	opt, ok := loaded.Lookup("listen")
	require.True(t, ok)
	assert.Equal(t, ":8080", opt.Default)
	assert.Equal(t, "listen address", opt.Help)
}

// TestSpecPaths tests deterministic dotted path enumeration
func TestSpecPaths(t *testing.T) {
	spec := MustSpec([]*Option{
		{Name: "b", Type: TypeString, Default: ""},
		{Name: "a", Type: TypeString, Default: ""},
	}, map[string]*Spec{
		"sub": MustSpec([]*Option{{Name: "c", Type: TypeInt, Default: 0}}, nil),
	})

	assert.Equal(t, []string{"a", "b", "sub.c"}, spec.Paths())
}

// TestSpecDocumentShape pins the on-disk document layout
func TestSpecDocumentShape(t *testing.T) {
	spec := MustSpec([]*Option{
		{Name: "debug", Type: TypeBool, Default: true},
	}, nil)

	data, err := spec.JSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	options, ok := doc["options"].(map[string]any)
	require.True(t, ok)
	entry, ok := options["debug"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bool", entry["type"])
	assert.Equal(t, true, entry["default"])
}
