package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Errors maps a field name to its single violation message. Only visible
// fields with a violation appear as keys.
type Errors map[string]string

// Clone returns a copy that callers may mutate.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Violation describes the first failing rule of one field.
type Violation struct {
	Field   string `json:"field"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// Engine validates steps of one schema. It holds no mutable state and is safe
// to share.
type Engine struct {
	model     *schema.Model
	evaluator visibility.Evaluator
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator overrides the visibility evaluator used to skip hidden fields.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// New returns an Engine for model.
func New(model *schema.Model, options ...Option) *Engine {
	e := &Engine{
		model:     model,
		evaluator: visibility.Default,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// ValidateStep is shorthand for New(model).ValidateStep(step, values).
func ValidateStep(model *schema.Model, step schema.Step, values schema.FormValues) Errors {
	return New(model).ValidateStep(step, values)
}

// ValidateStep checks the visible fields of step. Hidden fields are skipped
// entirely, including their required flag. The result is freshly allocated on
// every call and never nil.
func (e *Engine) ValidateStep(step schema.Step, values schema.FormValues) Errors {
	errs := make(Errors)
	for _, field := range step.Fields {
		if !e.evaluator.IsVisible(field, values) {
			continue
		}
		if v, failed := e.ValidateField(field, values); failed {
			errs[field.Name] = v.Message
		}
	}
	return errs
}

// ValidateAll validates every step in order and merges the results. Field
// names are unique across the schema so merging never collides.
func (e *Engine) ValidateAll(values schema.FormValues) Errors {
	errs := make(Errors)
	if e.model == nil {
		return errs
	}
	for _, step := range e.model.Steps() {
		for name, msg := range e.ValidateStep(step, values) {
			errs[name] = msg
		}
	}
	return errs
}

// ValidateField applies the rules of one field in fixed order and reports the
// first violation. Visibility is not considered here.
func (e *Engine) ValidateField(field schema.FieldSpec, values schema.FormValues) (Violation, bool) {
	value := values[field.Name]

	switch field.Type {
	case schema.FieldTypeCheckbox:
		checked, _ := value.(bool)
		if field.Required && !checked {
			return violation(field, RuleRequired, MessageRequired), true
		}
		return Violation{}, false
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypeNumber,
		schema.FieldTypeTextarea, schema.FieldTypeSelect, schema.FieldTypeRadio:
		return e.validateText(field, asText(value))
	default:
		return Violation{}, false
	}
}

func (e *Engine) validateText(field schema.FieldSpec, text string) (Violation, bool) {
	if field.Required && strings.TrimSpace(text) == "" {
		return violation(field, RuleRequired, MessageRequired), true
	}
	if text == "" {
		return Violation{}, false
	}

	c := field.Constraints
	if re := e.pattern(field); re != nil && !re.MatchString(text) {
		return violation(field, RulePattern, MessageInvalidFormat), true
	}

	if c.Min != nil || c.Max != nil {
		n, ok := parseNumber(text)
		if !ok {
			return violation(field, RuleNumber, MessageNotANumber), true
		}
		if c.Min != nil && n < *c.Min {
			return violation(field, RuleMin, MinimumMessage(*c.Min)), true
		}
		if c.Max != nil && n > *c.Max {
			return violation(field, RuleMax, MaximumMessage(*c.Max)), true
		}
	}

	if c.MaxLength != nil && utf8.RuneCountInString(text) > *c.MaxLength {
		return violation(field, RuleMaxLength, MaxLengthMessage(*c.MaxLength)), true
	}
	return Violation{}, false
}

func (e *Engine) pattern(field schema.FieldSpec) *regexp.Regexp {
	if field.Constraints.Pattern == "" {
		return nil
	}
	if e.model != nil {
		if re := e.model.Pattern(field.Name); re != nil {
			return re
		}
	}
	// Fields built outside a Model still get full-string semantics.
	re, err := regexp.Compile(`^(?:` + field.Constraints.Pattern + `)$`)
	if err != nil {
		return nil
	}
	return re
}

func violation(field schema.FieldSpec, rule Rule, message string) Violation {
	return Violation{Field: field.Name, Rule: rule, Message: message}
}

func asText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func parseNumber(text string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
