package presentation

import (
	"sort"

	"github.com/iiasa/ixmp/internal/keys"
	"github.com/iiasa/ixmp/internal/platform"
)

// ValueDTO is one configuration value for presentation.
type ValueDTO struct {
	Key        string `json:"key" yaml:"key"`
	Type       string `json:"type" yaml:"type"`
	Registered bool   `json:"registered" yaml:"registered"`
	Value      any    `json:"value" yaml:"value"`
}

// PlatformDTO is one platform entry for presentation.
type PlatformDTO struct {
	Name string `json:"name" yaml:"name"`
	// Default is set on the record the default alias points at.
	Default bool `json:"default" yaml:"default"`
	// Alias is the target name when the entry is the default alias itself.
	Alias  string         `json:"alias,omitempty" yaml:"alias,omitempty"`
	Class  string         `json:"class,omitempty" yaml:"class,omitempty"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// CandidateDTO is a configuration directory candidate.
type CandidateDTO struct {
	Label  string `json:"label" yaml:"label"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// Plain converts v to plain maps, slices and scalars, so that encoders
// without JSON marshaller support render platform sets correctly.
func Plain(v any) any {
	if s, ok := v.(*platform.Set); ok {
		return s.Map()
	}
	return keys.CloneValue(v)
}

// FromValues converts a store's values to DTOs sorted by key. Type names
// come from reg; unregistered keys are marked as such.
func FromValues(values map[string]any, reg *keys.Registry) []ValueDTO {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	dtos := make([]ValueDTO, len(names))
	for i, name := range names {
		dto := ValueDTO{Key: name, Type: "unregistered", Value: Plain(values[name])}
		if k, ok := reg.Lookup(name); ok {
			dto.Type = k.Type.Name()
			dto.Registered = true
		}
		dtos[i] = dto
	}
	return dtos
}

// FromPlatforms converts a platform set to DTOs sorted by name. The record
// fields exclude "class", which has its own column.
func FromPlatforms(set *platform.Set) []PlatformDTO {
	target, hasDefault := set.Default()

	names := set.Names()
	dtos := make([]PlatformDTO, 0, len(names))
	for _, name := range names {
		e, _ := set.Get(name)
		dto := PlatformDTO{Name: name}
		switch v := e.(type) {
		case platform.Alias:
			dto.Alias = string(v)
		case platform.Record:
			dto.Class = v.Class()
			dto.Default = hasDefault && name == target
			fields := map[string]any(v.Clone())
			delete(fields, platform.ClassField)
			if len(fields) > 0 {
				dto.Fields = fields
			}
		}
		dtos = append(dtos, dto)
	}
	return dtos
}
