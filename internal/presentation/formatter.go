// Package presentation renders configuration for the command line.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
}

// Formatter writes values in one format.
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a formatter. An empty format means text.
func NewFormatter(writer io.Writer, format Format) *Formatter {
	if format == "" {
		format = FormatText
	}
	return &Formatter{writer: writer, format: format}
}

// FormatValues writes configuration values. Structured formats write the
// JSON-shaped key/value object, as it would be saved.
func (f *Formatter) FormatValues(values []ValueDTO) error {
	switch f.format {
	case FormatJSON, FormatYAML:
		obj := make(map[string]any, len(values))
		for _, v := range values {
			obj[v.Key] = v.Value
		}
		return f.encode(obj)
	}

	tw := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	for _, v := range values {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Key, v.Type, inline(v.Value))
	}
	return tw.Flush()
}

// FormatValue writes a single value.
func (f *Formatter) FormatValue(v any) error {
	if f.format == FormatText {
		_, err := fmt.Fprintln(f.writer, inline(v))
		return err
	}
	return f.encode(v)
}

// FormatPlatforms writes a platform listing.
func (f *Formatter) FormatPlatforms(platforms []PlatformDTO) error {
	if f.format != FormatText {
		return f.encode(platforms)
	}

	tw := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	for _, p := range platforms {
		switch {
		case p.Alias != "":
			fmt.Fprintf(tw, "%s\t->\t%s\n", p.Name, p.Alias)
		default:
			marker := ""
			if p.Default {
				marker = "*"
			}
			fmt.Fprintf(tw, "%s%s\t%s\t%s\n", p.Name, marker, p.Class, fields(p.Fields))
		}
	}
	return tw.Flush()
}

// FormatPlatform writes one resolved platform record.
func (f *Formatter) FormatPlatform(name string, record map[string]any) error {
	if f.format != FormatText {
		return f.encode(map[string]any{"name": name, "record": record})
	}
	_, err := fmt.Fprintf(f.writer, "%s\n%s", name, indented(record))
	return err
}

// FormatCandidates writes the configuration directory candidates and the
// file in use.
func (f *Formatter) FormatCandidates(loaded string, candidates []CandidateDTO) error {
	if f.format != FormatText {
		return f.encode(map[string]any{"loaded": loaded, "candidates": candidates})
	}

	if loaded == "" {
		loaded = "(none; using defaults)"
	}
	fmt.Fprintf(f.writer, "loaded: %s\n", loaded)
	tw := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	for i, c := range candidates {
		state := "missing"
		if c.Exists {
			state = "exists"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, c.Label, c.Path, state)
	}
	return tw.Flush()
}

func (f *Formatter) encode(v any) error {
	switch f.format {
	case FormatYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// inline renders strings bare and everything else as compact JSON.
func inline(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func fields(m map[string]any) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, k+"="+inline(m[k]))
	}
	return strings.Join(parts, " ")
}

func indented(m map[string]any) string {
	var b strings.Builder
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(&b, "  %s: %s\n", k, inline(m[k]))
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
