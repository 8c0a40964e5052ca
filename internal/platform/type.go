package platform

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/iiasa/ixmp/internal/keys"
)

// Type is the keys.Type of the "platform" configuration value. Values are
// *Set.
var Type keys.Type = setType{}

type setType struct{}

func (setType) Name() string { return "platforms" }
func (setType) Zero() any    { return NewSet() }

func (setType) Coerce(v any) (any, error) {
	switch t := v.(type) {
	case *Set:
		if t == nil {
			return nil, fmt.Errorf("nil platform set")
		}
		return t.Clone(), nil
	case Set:
		return t.Clone(), nil
	}

	if s, ok := v.(string); ok {
		var m map[string]any
		if err := keys.DecodeJSON([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("parsing %q as a JSON object: %w", s, err)
		}
		return FromMap(m)
	}

	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, err
	}
	return FromMap(m)
}

func (setType) Clone(v any) any {
	if s, ok := v.(*Set); ok && s != nil {
		return s.Clone()
	}
	return v
}
