package keys

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Type converts raw values into a key's value type.
// Packages outside keys may implement Type for structured values.
type Type interface {
	// Name is used in diagnostics, e.g. "int".
	Name() string
	// Zero returns a fresh zero value.
	Zero() any
	// Coerce converts v or fails.
	Coerce(v any) (any, error)
	// Clone returns a copy of a value previously produced by Coerce or Zero
	// that shares no mutable state with it.
	Clone(v any) any
}

// Built-in types.
var (
	String Type = stringType{}
	Int    Type = intType{}
	Float  Type = floatType{}
	Bool   Type = boolType{}
	Path   Type = pathType{}
	List   Type = listType{}
	Map    Type = mapType{}
)

type scalar struct{}

func (scalar) Clone(v any) any { return v }

type stringType struct{ scalar }

func (stringType) Name() string { return "string" }
func (stringType) Zero() any    { return "" }

func (stringType) Coerce(v any) (any, error) {
	return cast.ToStringE(scalarOf(v))
}

type intType struct{ scalar }

func (intType) Name() string { return "int" }
func (intType) Zero() any    { return 0 }

func (intType) Coerce(v any) (any, error) {
	v = scalarOf(v)
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return cast.ToIntE(v)
}

type floatType struct{ scalar }

func (floatType) Name() string { return "float" }
func (floatType) Zero() any    { return 0.0 }

func (floatType) Coerce(v any) (any, error) {
	v = scalarOf(v)
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return cast.ToFloat64E(v)
}

type boolType struct{ scalar }

func (boolType) Name() string { return "bool" }
func (boolType) Zero() any    { return false }

func (boolType) Coerce(v any) (any, error) {
	v = scalarOf(v)
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return cast.ToBoolE(v)
}

// pathType holds filesystem paths as cleaned strings, so they encode to JSON
// as plain strings. A leading "~/" is expanded to the home directory.
type pathType struct{ scalar }

func (pathType) Name() string { return "path" }
func (pathType) Zero() any    { return "" }

func (pathType) Coerce(v any) (any, error) {
	s, err := cast.ToStringE(scalarOf(v))
	if err != nil {
		return nil, err
	}
	if s == "" {
		return "", nil
	}
	if s == "~" || strings.HasPrefix(s, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", s, err)
		}
		s = filepath.Join(home, strings.TrimPrefix(s, "~"))
	}
	return filepath.Clean(s), nil
}

type listType struct{}

func (listType) Name() string { return "list" }
func (listType) Zero() any    { return []any{} }

func (listType) Coerce(v any) (any, error) {
	if s, ok := v.(string); ok {
		var out []any
		if err := DecodeJSON([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("parsing %q as a JSON array: %w", s, err)
		}
		return CloneValue(out), nil
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("unable to cast %#v of type %T to list", v, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = CloneValue(rv.Index(i).Interface())
	}
	return out, nil
}

func (listType) Clone(v any) any { return CloneValue(v) }

type mapType struct{}

func (mapType) Name() string { return "map" }
func (mapType) Zero() any    { return map[string]any{} }

func (mapType) Coerce(v any) (any, error) {
	if s, ok := v.(string); ok {
		var out map[string]any
		if err := DecodeJSON([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("parsing %q as a JSON object: %w", s, err)
		}
		return CloneValue(out), nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, err
	}
	return CloneValue(m), nil
}

func (mapType) Clone(v any) any { return CloneValue(v) }

// DecodeJSON decodes exactly one JSON value from data into out, keeping
// numbers as json.Number so that large integers survive.
func DecodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

// scalarOf unwraps a json.Number to its literal text, which cast parses
// without going through float64.
func scalarOf(v any) any {
	if n, ok := v.(json.Number); ok {
		return string(n)
	}
	return v
}

// Number converts a decoded json.Number to an int when it is integral and
// fits, and to a float64 otherwise.
func Number(n json.Number) any {
	if i, err := strconv.ParseInt(string(n), 10, 0); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}

// CloneValue deep-copies JSON-shaped values: maps with string keys, slices
// and scalars. Decoded json.Number values become int or float64 (see
// Number). Other values are returned as they are.
func CloneValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		return Number(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = CloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = CloneValue(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// truthy reports whether v counts as a supplied default: non-nil, non-zero
// and, for collections and strings, non-empty.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() > 0
	default:
		return !rv.IsZero()
	}
}
