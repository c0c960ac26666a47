package aioconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	spec := MustSpec([]*Option{
		{Name: "debug", Type: TypeBool, Default: true},
		{Name: "ratio", Type: TypeFloat, Default: 0.5},
		{Name: "tags", Type: TypeStrings, Default: "a,b"},
	}, map[string]*Spec{
		"server": MustSpec([]*Option{
			{Name: "host", Type: TypeString, Default: "0.0.0.0"},
			{Name: "port", Type: TypeInt, Default: 8080},
		}, nil),
	})
	snap, err := Resolve(spec)
	require.NoError(t, err)
	return snap
}

func TestSnapshotGet(t *testing.T) {
	snap := resolvedSnapshot(t)

	v, err := snap.Get("debug")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = snap.Get("server.port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), v)

	t.Run("UnknownPath", func(t *testing.T) {
		_, err := snap.Get("nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UnknownSubconfig", func(t *testing.T) {
		_, err := snap.Get("nope.port")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SubconfigIsNotAValue", func(t *testing.T) {
		_, err := snap.Get("server")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSnapshotSub(t *testing.T) {
	snap := resolvedSnapshot(t)

	sub, err := snap.Sub("server")
	require.NoError(t, err)
	host, err := sub.String("host")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", host)

	_, err = snap.Sub("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotAsMap(t *testing.T) {
	snap := resolvedSnapshot(t)

	m := snap.AsMap()
	assert.Equal(t, map[string]any{
		"debug": true,
		"ratio": 0.5,
		"tags":  []string{"a", "b"},
		"server": map[string]any{
			"host": "0.0.0.0",
			"port": int64(8080),
		},
	}, m)

	// The export is a copy
	m["debug"] = nil
	delete(m, "server")
	v, err := snap.Get("server.host")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", v)
}

// TestSnapshotSliceIsolation verifies list values are not shared between
// the spec's defaults, sibling snapshots, and exported maps
func TestSnapshotSliceIsolation(t *testing.T) {
	defaultTags := []string{"web"}
	spec := MustSpec([]*Option{
		{Name: "tags", Type: TypeStrings, Default: defaultTags},
	}, nil)

	first, err := Resolve(spec)
	require.NoError(t, err)
	second, err := Resolve(spec)
	require.NoError(t, err)

	exported := first.AsMap()["tags"].([]string)
	exported[0] = "tampered"

	v, err := first.Strings("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, v)

	v, err = second.Strings("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, v)

	assert.Equal(t, []string{"web"}, defaultTags)
}

func TestSnapshotFlatten(t *testing.T) {
	snap := resolvedSnapshot(t)

	assert.Equal(t, map[string]any{
		"debug":       true,
		"ratio":       0.5,
		"tags":        []string{"a", "b"},
		"server.host": "0.0.0.0",
		"server.port": int64(8080),
	}, snap.Flatten())
}

func TestSnapshotTypedGetters(t *testing.T) {
	snap := resolvedSnapshot(t)

	t.Run("Bool", func(t *testing.T) {
		v, err := snap.Bool("debug")
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("Int64", func(t *testing.T) {
		v, err := snap.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), v)
	})

	t.Run("Float64", func(t *testing.T) {
		v, err := snap.Float64("ratio")
		require.NoError(t, err)
		assert.Equal(t, 0.5, v)
	})

	t.Run("String", func(t *testing.T) {
		v, err := snap.String("server.host")
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", v)
	})

	t.Run("Strings", func(t *testing.T) {
		v, err := snap.Strings("tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, v)
	})

	t.Run("StringConverts", func(t *testing.T) {
		v, err := snap.String("server.port")
		require.NoError(t, err)
		assert.Equal(t, "8080", v)
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		_, err := snap.Int64("server.host")
		assert.Error(t, err)
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, err := snap.Bool("server.missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSnapshotProblemsOrdering(t *testing.T) {
	spec := MustSpec([]*Option{
		{Name: "top", Type: TypeInt, Default: 1, EnvVar: "TOP"},
	}, map[string]*Spec{
		"a": MustSpec([]*Option{
			{Name: "x", Type: TypeInt, Default: 1, EnvVar: "A_X"},
		}, nil),
		"b": MustSpec([]*Option{
			{Name: "y", Type: TypeInt, Default: 1, EnvVar: "B_Y"},
		}, nil),
	})

	env := EnvFromMap(map[string]string{"TOP": "bad", "A_X": "bad", "B_Y": "bad"})
	snap, err := Resolve(spec, env)
	require.NoError(t, err)

	problems := snap.Problems()
	require.Len(t, problems, 3)

	// Own problems first, then subconfigs in name order
	paths := make([]string, len(problems))
	for i, p := range problems {
		var cerr *CoercionError
		require.ErrorAs(t, p, &cerr)
		paths[i] = cerr.Path
	}
	assert.Equal(t, []string{"top", "a.x", "b.y"}, paths)
}
