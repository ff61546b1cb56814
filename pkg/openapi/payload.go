package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const (
	ExtensionStep      = "x-formflow-step"
	ExtensionFieldType = "x-formflow-type"
	ExtensionVisibleIf = "x-formflow-visible-if"
	ExtensionMinimum   = "x-formflow-minimum"
	ExtensionMaximum   = "x-formflow-maximum"
)

// ErrPayloadInvalid matches every error returned by ValidatePayload.
var ErrPayloadInvalid = errors.New("openapi: payload does not match form")

// PayloadSchema describes the values a submitter receives for model. Every
// field is a property; checkboxes are booleans and everything else a string.
// Only fields that are always visible and required are listed as required.
// Optional or conditional string fields also accept "".
func PayloadSchema(model *schema.Model) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	root.Title = model.Title()
	root.Description = model.Description()

	var required []string
	for _, step := range model.Steps() {
		for _, field := range step.Fields {
			prop := fieldSchema(field)
			prop.Extensions[ExtensionStep] = step.ID
			root.WithProperty(field.Name, prop)
			if isAlwaysRequired(field) {
				required = append(required, field.Name)
			}
		}
	}
	if len(required) > 0 {
		root.WithRequired(required)
	}
	return root
}

// ValidatePayload checks values against PayloadSchema(model).
func ValidatePayload(model *schema.Model, values schema.FormValues) error {
	if err := PayloadSchema(model).VisitJSON(map[string]any(values)); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	return nil
}

// ValidateSchema checks that the generated payload schema is itself a valid
// OpenAPI schema.
func ValidateSchema(ctx context.Context, model *schema.Model) error {
	return PayloadSchema(model).Validate(ctx)
}

func fieldSchema(field schema.FieldSpec) *openapi3.Schema {
	var s *openapi3.Schema
	optional := !isAlwaysRequired(field)

	switch field.Type {
	case schema.FieldTypeCheckbox:
		s = openapi3.NewBoolSchema()
		if !optional {
			s.WithEnum(true)
		}
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypeNumber,
		schema.FieldTypeTextarea, schema.FieldTypeSelect, schema.FieldTypeRadio:
		s = stringSchema(field, optional)
	default:
		s = openapi3.NewSchema()
	}

	s.Title = field.DisplayLabel()
	s.Description = field.Constraints.Placeholder
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	s.Extensions[ExtensionFieldType] = string(field.Type)
	if rule := field.VisibilityRule; rule != nil {
		s.Extensions[ExtensionVisibleIf] = map[string]any{
			"field": rule.DependsOnField,
			"value": rule.EqualsValue,
		}
	}
	if min := field.Constraints.Min; min != nil {
		s.Extensions[ExtensionMinimum] = *min
	}
	if max := field.Constraints.Max; max != nil {
		s.Extensions[ExtensionMaximum] = *max
	}
	return s
}

func stringSchema(field schema.FieldSpec, optional bool) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	c := field.Constraints

	if field.Type == schema.FieldTypeEmail {
		s.WithFormat("email")
	}
	if !optional {
		s.WithMinLength(1)
	}
	if c.MaxLength != nil {
		s.WithMaxLength(int64(*c.MaxLength))
	}
	if c.Pattern != "" {
		if optional {
			s.WithPattern(`^(?:(?:` + c.Pattern + `)|)$`)
		} else {
			s.WithPattern(`^(?:` + c.Pattern + `)$`)
		}
	}
	if field.Type.HasOptions() && len(c.Options) > 0 {
		enum := make([]any, 0, len(c.Options)+1)
		for _, opt := range c.Options {
			enum = append(enum, opt)
		}
		if optional {
			enum = append(enum, "")
		}
		s.WithEnum(enum...)
	}
	return s
}

func isAlwaysRequired(field schema.FieldSpec) bool {
	return field.Required && field.VisibilityRule == nil
}
