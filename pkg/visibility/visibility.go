package visibility

import "github.com/goliatone/go-formflow/pkg/schema"

// Evaluator decides whether a field is currently relevant given the values
// collected so far.
type Evaluator interface {
	IsVisible(field schema.FieldSpec, values schema.FormValues) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field schema.FieldSpec, values schema.FormValues) bool

// IsVisible delegates to the underlying function.
func (fn EvaluatorFunc) IsVisible(field schema.FieldSpec, values schema.FormValues) bool {
	return fn(field, values)
}

// Default is the exact-equality evaluator used when callers do not inject
// their own.
var Default Evaluator = EvaluatorFunc(IsVisible)

// IsVisible reports true for fields without a rule. Otherwise the dependency's
// stored value must equal the rule literal in both type and content; "true"
// never matches true.
func IsVisible(field schema.FieldSpec, values schema.FormValues) bool {
	rule := field.VisibilityRule
	if rule == nil {
		return true
	}
	current, ok := values[rule.DependsOnField]
	if !ok {
		return false
	}
	return exactEqual(current, rule.EqualsValue)
}

func exactEqual(current, want any) bool {
	switch w := want.(type) {
	case string:
		got, ok := current.(string)
		return ok && got == w
	case bool:
		got, ok := current.(bool)
		return ok && got == w
	default:
		return false
	}
}

// VisibleFields returns the fields of step that evaluator considers visible,
// in declaration order. A nil evaluator means Default.
func VisibleFields(step schema.Step, values schema.FormValues, evaluator Evaluator) []schema.FieldSpec {
	if evaluator == nil {
		evaluator = Default
	}
	out := make([]schema.FieldSpec, 0, len(step.Fields))
	for _, field := range step.Fields {
		if evaluator.IsVisible(field, values) {
			out = append(out, field)
		}
	}
	return out
}
