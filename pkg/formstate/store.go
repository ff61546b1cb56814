package formstate

import (
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Store holds the values and validation errors of one workflow. It has no
// locks; a single caller owns it.
type Store struct {
	model     *schema.Model
	evaluator visibility.Evaluator
	values    schema.FormValues
	errors    validation.Errors
}

// Option configures a Store.
type Option func(*Store)

// WithEvaluator swaps the visibility evaluator used by VisibleFields.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Store) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithValues seeds values on top of the schema defaults. Names that are not
// part of the schema are ignored. Kinds are not checked here; workflow.New
// rejects mistyped seeds before they reach the store.
func WithValues(values schema.FormValues) Option {
	return func(s *Store) {
		for name, value := range values {
			if _, ok := s.values[name]; ok {
				s.values[name] = value
			}
		}
	}
}

// New initialises a store with the default value of every field and no
// errors.
func New(model *schema.Model, options ...Option) *Store {
	s := &Store{
		model:     model,
		evaluator: visibility.Default,
		values:    model.Defaults(),
		errors:    make(validation.Errors),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Model returns the schema backing the store.
func (s *Store) Model() *schema.Model {
	return s.model
}

// SetField overwrites the value of name and clears its pending error. The
// error of other fields is left alone, so a field re-hidden by this change
// keeps a stale error until the next validation pass.
func (s *Store) SetField(name string, value any) {
	s.values[name] = value
	delete(s.errors, name)
}

// ReplaceErrors swaps the whole error map for errs.
func (s *Store) ReplaceErrors(errs validation.Errors) {
	if errs == nil {
		s.errors = make(validation.Errors)
		return
	}
	s.errors = errs.Clone()
}

// ClearErrors drops every pending error.
func (s *Store) ClearErrors() {
	s.errors = make(validation.Errors)
}

// VisibleFields returns the visible fields of the step at stepIndex, in
// declaration order. An out-of-range index yields nil.
func (s *Store) VisibleFields(stepIndex int) []schema.FieldSpec {
	step, ok := s.model.StepAt(stepIndex)
	if !ok {
		return nil
	}
	return visibility.VisibleFields(step, s.values, s.evaluator)
}

// IsVisible reports whether field is visible under the current values.
func (s *Store) IsVisible(field schema.FieldSpec) bool {
	return s.evaluator.IsVisible(field, s.values)
}

// Evaluator returns the visibility evaluator in use.
func (s *Store) Evaluator() visibility.Evaluator {
	return s.evaluator
}

// Value returns the current value of name.
func (s *Store) Value(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Values returns a copy of all values.
func (s *Store) Values() schema.FormValues {
	return s.values.Clone()
}

// Errors returns a copy of the pending errors.
func (s *Store) Errors() validation.Errors {
	return s.errors.Clone()
}

// ErrorFor returns the pending error of name, if any.
func (s *Store) ErrorFor(name string) (string, bool) {
	msg, ok := s.errors[name]
	return msg, ok
}
