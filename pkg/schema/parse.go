package schema

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DocumentFormat identifies the encoding of a schema document.
type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

// documentFile mirrors the on-disk layout. Constraints may be written flat on
// the field or nested under "constraints"; visibility may be written as
// visibleIf {field, value} or visibilityRule {dependsOnField, equalsValue}.
type documentFile struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Steps       []stepFile `json:"steps" yaml:"steps"`
}

type stepFile struct {
	ID             string      `json:"id" yaml:"id"`
	Label          string      `json:"label" yaml:"label"`
	AutoFocusField string      `json:"autoFocusField" yaml:"autoFocusField"`
	Fields         []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name           string          `json:"name" yaml:"name"`
	Label          string          `json:"label" yaml:"label"`
	Type           string          `json:"type" yaml:"type"`
	Required       bool            `json:"required" yaml:"required"`
	Placeholder    string          `json:"placeholder" yaml:"placeholder"`
	MaxLength      *int            `json:"maxLength" yaml:"maxLength"`
	Min            *float64        `json:"min" yaml:"min"`
	Max            *float64        `json:"max" yaml:"max"`
	Pattern        string          `json:"pattern" yaml:"pattern"`
	Options        []string        `json:"options" yaml:"options"`
	Constraints    *Constraints    `json:"constraints" yaml:"constraints"`
	VisibleIf      *visibleIfFile  `json:"visibleIf" yaml:"visibleIf"`
	VisibilityRule *VisibilityRule `json:"visibilityRule" yaml:"visibilityRule"`
}

type visibleIfFile struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// Parse decodes a JSON or YAML document and validates it with New.
func Parse(doc Document) (*Model, error) {
	form, err := Decode(doc)
	if err != nil {
		return nil, err
	}
	model, err := New(form)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", doc.Location(), err)
	}
	return model, nil
}

// Decode converts a document into a FormSchema without validating it.
func Decode(doc Document) (FormSchema, error) {
	raw := doc.Raw()
	if len(bytes.TrimSpace(raw)) == 0 {
		return FormSchema{}, fmt.Errorf("schema: document %s is empty", doc.Location())
	}

	var file documentFile
	switch doc.Format() {
	case FormatJSON:
		if err := json.Unmarshal(raw, &file); err != nil {
			return FormSchema{}, fmt.Errorf("schema: parse %s as JSON: %w", doc.Location(), err)
		}
	default:
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return FormSchema{}, fmt.Errorf("schema: parse %s as YAML: %w", doc.Location(), err)
		}
	}
	return file.toSchema(), nil
}

// ParseBytes is a convenience wrapper around Parse for in-memory payloads.
// name only influences format detection and error messages.
func ParseBytes(name string, raw []byte) (*Model, error) {
	doc, err := NewDocument(SourceFromFS(name), raw)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

func (f documentFile) toSchema() FormSchema {
	form := FormSchema{
		Title:       f.Title,
		Description: f.Description,
		Steps:       make([]Step, 0, len(f.Steps)),
	}
	for _, s := range f.Steps {
		step := Step{
			ID:                 s.ID,
			Label:              s.Label,
			AutoFocusFieldName: s.AutoFocusField,
			Fields:             make([]FieldSpec, 0, len(s.Fields)),
		}
		for _, field := range s.Fields {
			step.Fields = append(step.Fields, field.toSpec())
		}
		form.Steps = append(form.Steps, step)
	}
	return form
}

func (f fieldFile) toSpec() FieldSpec {
	spec := FieldSpec{
		Name:     f.Name,
		Label:    f.Label,
		Type:     FieldType(strings.ToLower(strings.TrimSpace(f.Type))),
		Required: f.Required,
	}

	if f.Constraints != nil {
		spec.Constraints = *f.Constraints
	}
	c := &spec.Constraints
	if f.Placeholder != "" {
		c.Placeholder = f.Placeholder
	}
	if f.MaxLength != nil {
		c.MaxLength = f.MaxLength
	}
	if f.Min != nil {
		c.Min = f.Min
	}
	if f.Max != nil {
		c.Max = f.Max
	}
	if f.Pattern != "" {
		c.Pattern = f.Pattern
	}
	if len(f.Options) > 0 {
		c.Options = append([]string(nil), f.Options...)
	}

	switch {
	case f.VisibilityRule != nil:
		rule := *f.VisibilityRule
		spec.VisibilityRule = &rule
	case f.VisibleIf != nil:
		spec.VisibilityRule = &VisibilityRule{
			DependsOnField: f.VisibleIf.Field,
			EqualsValue:    f.VisibleIf.Value,
		}
	}
	return spec
}

func detectFormat(location string, raw []byte) DocumentFormat {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}
