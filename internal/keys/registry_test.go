package keys

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var allTypes = []Type{String, Int, Float, Bool, Path, List, Map}

func TestRegister_UsesDefaultOrZero(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("timeout", Int, 30))
	require.NoError(t, r.Register("name", String, nil))
	require.NoError(t, r.Register("ratio", Float, 0.0))
	require.NoError(t, r.Register("tags", List, []any{}))

	k, ok := r.Lookup("timeout")
	require.True(t, ok)
	assert.Equal(t, 30, k.Default())

	k, _ = r.Lookup("name")
	assert.Equal(t, "", k.Default())

	k, _ = r.Lookup("ratio")
	assert.Equal(t, 0.0, k.Default())

	k, _ = r.Lookup("tags")
	assert.Equal(t, []any{}, k.Default())
}

func TestRegister_CoercesDefault(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("timeout", Int, "30"))
	k, _ := r.Lookup("timeout")
	assert.Equal(t, 30, k.Default())

	err := r.Register("broken", Int, "thirty")
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.False(t, r.Has("broken"))
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("timeout", Int, 30))

	err := r.Register("timeout", String, "x")

	require.ErrorIs(t, err, ErrDuplicateKey)
	k, _ := r.Lookup("timeout")
	assert.Equal(t, Int, k.Type, "first registration must survive")
}

func TestRegister_DuplicateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New()
		name := rapid.StringMatching(`[a-z_]{1,12}`).Draw(t, "name")
		first := rapid.SampledFrom(allTypes).Draw(t, "first")
		second := rapid.SampledFrom(allTypes).Draw(t, "second")

		if err := r.Register(name, first, nil); err != nil {
			t.Fatalf("first registration: %v", err)
		}
		if err := r.Register(name, second, nil); !errors.Is(err, ErrDuplicateKey) {
			t.Fatalf("expected ErrDuplicateKey, got %v", err)
		}
		if err := r.RegisterFunc(name, second, func() any { return second.Zero() }); !errors.Is(err, ErrDuplicateKey) {
			t.Fatalf("expected ErrDuplicateKey from RegisterFunc, got %v", err)
		}
	})
}

func TestRegister_NilType(t *testing.T) {
	r := New()
	require.Error(t, r.Register("x", nil, nil))
	require.Error(t, r.RegisterFunc("x", nil, nil))
}

func TestMustRegister_Panics(t *testing.T) {
	r := New()
	r.MustRegister("x", Bool, true)
	assert.Panics(t, func() { r.MustRegister("x", Bool, true) })
}

func TestRegisterFunc_EvaluatedEachTime(t *testing.T) {
	r := New()
	calls := 0
	require.NoError(t, r.RegisterFunc("counter", Int, func() any {
		calls++
		return calls
	}))

	k, _ := r.Lookup("counter")
	assert.Equal(t, 1, k.Default())
	assert.Equal(t, 2, k.Default())
}

func TestKeyDefault_ReturnsCopies(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("opts", Map, map[string]any{"a": map[string]any{"b": 1}}))

	k, _ := r.Lookup("opts")
	first := k.Default().(map[string]any)
	first["a"].(map[string]any)["b"] = 2

	second := k.Default().(map[string]any)
	assert.Equal(t, 1, second["a"].(map[string]any)["b"])
}

func TestUnregister_Idempotent(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("x", Int, 1))
	v := r.Version()

	r.Unregister("x")
	assert.False(t, r.Has("x"))
	assert.Greater(t, r.Version(), v)

	v = r.Version()
	r.Unregister("x")
	assert.Equal(t, v, r.Version())

	// Unregistered names can be registered again.
	require.NoError(t, r.Register("x", String, "y"))
}

func TestKeys_Sorted(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(name, String, nil))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestCoerce_Modes(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("timeout", Int, 30))

	got, err := r.Coerce("timeout", "45", Strict)
	require.NoError(t, err)
	assert.Equal(t, 45, got)

	_, err = r.Coerce("missing", 1, Strict)
	require.ErrorIs(t, err, ErrUnknownKey)
	var uk *UnknownKeyError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "missing", uk.Name)

	raw := map[string]any{"nested": []any{1.0}}
	got, err = r.Coerce("missing", raw, Lenient)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	got.(map[string]any)["nested"] = nil
	assert.NotNil(t, raw["nested"], "lenient values are copied")
}

func TestCoerce_TypeMismatchDetails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("timeout", Int, 30))

	_, err := r.Coerce("timeout", "abc", Strict)

	require.ErrorIs(t, err, ErrTypeMismatch)
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "timeout", tm.Key)
	assert.Equal(t, "int", tm.Expected)
	assert.Equal(t, "string", tm.Actual)
	assert.Equal(t, "abc", tm.Value)
	assert.Contains(t, err.Error(), `expected int, got string "abc"`)
}

func TestCoerce_IntRoundTripProperty(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("n", Int, nil))

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Int().Draw(t, "n")
		got, err := r.Coerce("n", strconv.Itoa(n), Strict)
		if err != nil {
			t.Fatalf("coerce %d: %v", n, err)
		}
		if got != n {
			t.Fatalf("got %v, want %d", got, n)
		}
	})
}

func TestCoerce_FloatRoundTripProperty(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("f", Float, nil))

	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(-1e12, 1e12).Draw(t, "f")
		got, err := r.Coerce("f", strconv.FormatFloat(f, 'g', -1, 64), Strict)
		if err != nil {
			t.Fatalf("coerce %v: %v", f, err)
		}
		if got != f {
			t.Fatalf("got %v, want %v", got, f)
		}
	})
}
