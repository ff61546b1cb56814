package schema

import "strings"

// FieldType is the closed set of input kinds a schema may declare. Switches
// over FieldType must cover every constant below; anything else is rejected
// when the schema is loaded.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

// FieldTypes lists every supported type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypeTextarea,
		FieldTypeSelect,
		FieldTypeRadio,
		FieldTypeCheckbox,
	}
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeTextarea,
		FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the type picks from a fixed option list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio:
		return true
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeTextarea, FieldTypeCheckbox:
		return false
	default:
		return false
	}
}

// IsBoolean reports whether values of this type are stored as bool.
func (t FieldType) IsBoolean() bool {
	return t == FieldTypeCheckbox
}

// ParseFieldType normalises a raw type tag. The second return value is false
// when the tag is not a supported type.
func ParseFieldType(raw string) (FieldType, bool) {
	t := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// Constraints holds the declarative limits attached to a field. Pointer
// members are unset when nil.
type Constraints struct {
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min         *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// VisibilityRule makes a field relevant only while another field holds an
// exact value. EqualsValue is a string, or a bool when the dependency is a
// checkbox.
type VisibilityRule struct {
	DependsOnField string `json:"dependsOnField" yaml:"dependsOnField"`
	EqualsValue    any    `json:"equalsValue" yaml:"equalsValue"`
}

// FieldSpec describes one input. Names share a single namespace across the
// whole schema.
type FieldSpec struct {
	Name           string          `json:"name"`
	Label          string          `json:"label,omitempty"`
	Type           FieldType       `json:"type"`
	Required       bool            `json:"required"`
	Constraints    Constraints     `json:"constraints"`
	VisibilityRule *VisibilityRule `json:"visibilityRule,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldSpec) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// DefaultValue returns the initial value for the field type: false for
// checkboxes and the empty string for everything else.
func (f FieldSpec) DefaultValue() any {
	switch f.Type {
	case FieldTypeCheckbox:
		return false
	case FieldTypeText, FieldTypeEmail, FieldTypeNumber, FieldTypeTextarea,
		FieldTypeSelect, FieldTypeRadio:
		return ""
	default:
		return ""
	}
}

// Step is an ordered group of fields validated together.
type Step struct {
	ID                 string      `json:"id"`
	Label              string      `json:"label,omitempty"`
	Fields             []FieldSpec `json:"fields"`
	AutoFocusFieldName string      `json:"autoFocusField,omitempty"`
}

// FormSchema is the declarative document driving a workflow. Step order
// defines navigation order.
type FormSchema struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
}

// FormValues maps field names to their current value.
type FormValues map[string]any

// Clone returns a shallow copy; values are strings or bools so a shallow copy
// is sufficient.
func (v FormValues) Clone() FormValues {
	if v == nil {
		return FormValues{}
	}
	out := make(FormValues, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// String returns the value stored under name when it is a string.
func (v FormValues) String(name string) (string, bool) {
	s, ok := v[name].(string)
	return s, ok
}

// Bool returns the value stored under name when it is a bool.
func (v FormValues) Bool(name string) (bool, bool) {
	b, ok := v[name].(bool)
	return b, ok
}

func cloneStep(step Step) Step {
	out := step
	out.Fields = make([]FieldSpec, len(step.Fields))
	for i, field := range step.Fields {
		out.Fields[i] = cloneField(field)
	}
	return out
}

func cloneField(field FieldSpec) FieldSpec {
	out := field
	if field.Constraints.MaxLength != nil {
		v := *field.Constraints.MaxLength
		out.Constraints.MaxLength = &v
	}
	if field.Constraints.Min != nil {
		v := *field.Constraints.Min
		out.Constraints.Min = &v
	}
	if field.Constraints.Max != nil {
		v := *field.Constraints.Max
		out.Constraints.Max = &v
	}
	if field.Constraints.Options != nil {
		out.Constraints.Options = append([]string(nil), field.Constraints.Options...)
	}
	if field.VisibilityRule != nil {
		rule := *field.VisibilityRule
		out.VisibilityRule = &rule
	}
	return out
}
