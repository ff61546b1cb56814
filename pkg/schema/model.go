package schema

import (
	"regexp"
	"strings"
)

// Model is a validated, immutable FormSchema with lookup indexes. Build it
// with New; the zero value is not usable.
type Model struct {
	title       string
	description string
	steps       []Step
	fields      map[string]FieldSpec
	order       []string
	stepOf      map[string]int
	patterns    map[string]*regexp.Regexp
}

type fieldLocation struct {
	step  int
	index int
}

// New validates the schema and returns an immutable Model. Every structural
// problem is reported at once through a *Error.
func New(form FormSchema) (*Model, error) {
	var issues issueList

	if len(form.Steps) == 0 {
		issues.add("steps", "schema must declare at least one step")
	}

	m := &Model{
		title:       form.Title,
		description: form.Description,
		steps:       make([]Step, len(form.Steps)),
		fields:      make(map[string]FieldSpec),
		stepOf:      make(map[string]int),
		patterns:    make(map[string]*regexp.Regexp),
	}

	locations := make(map[string]fieldLocation)
	stepIDs := make(map[string]int)

	for si, step := range form.Steps {
		m.steps[si] = cloneStep(step)
		path := stepPath(si)

		id := strings.TrimSpace(step.ID)
		switch {
		case id == "":
			issues.add(path, "step id is required")
		default:
			if prev, exists := stepIDs[id]; exists {
				issues.add(path, "duplicate step id %q (first declared at %s)", id, stepPath(prev))
			} else {
				stepIDs[id] = si
			}
		}

		for fi, field := range step.Fields {
			fpath := fieldPath(si, fi)
			name := field.Name
			if strings.TrimSpace(name) == "" {
				issues.add(fpath, "field name is required")
				continue
			}
			if prev, exists := locations[name]; exists {
				issues.add(fpath, "duplicate field name %q (first declared at %s)", name, fieldPath(prev.step, prev.index))
				continue
			}
			locations[name] = fieldLocation{step: si, index: fi}
			m.fields[name] = cloneField(field)
			m.order = append(m.order, name)
			m.stepOf[name] = si

			checkField(&issues, fpath, field, m.patterns)
		}

		if focus := step.AutoFocusFieldName; focus != "" && !stepHasField(step, focus) {
			issues.add(path, "autoFocusField %q is not a field of this step", focus)
		}
	}

	for _, name := range m.order {
		field := m.fields[name]
		if field.VisibilityRule == nil {
			continue
		}
		loc := locations[name]
		checkVisibilityRule(&issues, fieldPath(loc.step, loc.index), field, m.fields)
	}
	checkVisibilityCycles(&issues, m.order, m.fields, locations)

	if err := issues.err(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew panics when the schema is invalid. Useful for fixtures.
func MustNew(form FormSchema) *Model {
	m, err := New(form)
	if err != nil {
		panic(err)
	}
	return m
}

func checkField(issues *issueList, path string, field FieldSpec, patterns map[string]*regexp.Regexp) {
	if !field.Type.Valid() {
		issues.add(path, "field %q has unsupported type %q", field.Name, field.Type)
		return
	}

	c := field.Constraints
	if field.Type.HasOptions() && len(c.Options) == 0 {
		issues.add(path, "field %q of type %s requires at least one option", field.Name, field.Type)
	}
	if c.MaxLength != nil && *c.MaxLength < 0 {
		issues.add(path, "field %q has negative maxLength %d", field.Name, *c.MaxLength)
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		issues.add(path, "field %q has min %v greater than max %v", field.Name, *c.Min, *c.Max)
	}
	if c.Pattern != "" {
		re, err := compilePattern(c.Pattern)
		if err != nil {
			issues.add(path, "field %q has invalid pattern: %v", field.Name, err)
		} else {
			patterns[field.Name] = re
		}
	}
}

// compilePattern anchors the expression so only full-string matches pass.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, err
	}
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

func checkVisibilityRule(issues *issueList, path string, field FieldSpec, fields map[string]FieldSpec) {
	rule := field.VisibilityRule
	dep := rule.DependsOnField
	if strings.TrimSpace(dep) == "" {
		issues.add(path, "field %q visibility rule must name a field", field.Name)
		return
	}
	if dep == field.Name {
		issues.add(path, "field %q visibility rule depends on itself", field.Name)
		return
	}
	target, ok := fields[dep]
	if !ok {
		issues.add(path, "field %q visibility rule references unknown field %q", field.Name, dep)
		return
	}

	switch rule.EqualsValue.(type) {
	case bool:
		if !target.Type.IsBoolean() {
			issues.add(path, "field %q compares %s field %q with a boolean", field.Name, target.Type, dep)
		}
	case string:
		if target.Type.IsBoolean() {
			issues.add(path, "field %q compares checkbox field %q with a string", field.Name, dep)
		}
	default:
		issues.add(path, "field %q visibility value must be a string or boolean, got %T", field.Name, rule.EqualsValue)
	}
}

func checkVisibilityCycles(issues *issueList, order []string, fields map[string]FieldSpec, locations map[string]fieldLocation) {
	reported := make(map[string]bool)
	for _, start := range order {
		seen := map[string]bool{start: true}
		current := start
		for {
			field, ok := fields[current]
			if !ok || field.VisibilityRule == nil {
				break
			}
			next := field.VisibilityRule.DependsOnField
			if next == current {
				break
			}
			if seen[next] {
				if next == start && !reported[start] {
					loc := locations[start]
					issues.add(fieldPath(loc.step, loc.index), "field %q is part of a visibility cycle", start)
					reported[start] = true
				}
				break
			}
			seen[next] = true
			current = next
		}
	}
}

func stepHasField(step Step, name string) bool {
	for _, field := range step.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

// Title returns the schema title.
func (m *Model) Title() string { return m.title }

// Description returns the schema description.
func (m *Model) Description() string { return m.description }

// TotalSteps returns the number of steps.
func (m *Model) TotalSteps() int { return len(m.steps) }

// LastStepIndex returns the index of the final step.
func (m *Model) LastStepIndex() int { return len(m.steps) - 1 }

// StepAt returns a copy of the step at index.
func (m *Model) StepAt(index int) (Step, bool) {
	if index < 0 || index >= len(m.steps) {
		return Step{}, false
	}
	return cloneStep(m.steps[index]), true
}

// Steps returns copies of every step in declaration order.
func (m *Model) Steps() []Step {
	out := make([]Step, len(m.steps))
	for i, step := range m.steps {
		out[i] = cloneStep(step)
	}
	return out
}

// FieldByName looks up a field anywhere in the schema.
func (m *Model) FieldByName(name string) (FieldSpec, bool) {
	field, ok := m.fields[name]
	if !ok {
		return FieldSpec{}, false
	}
	return cloneField(field), true
}

// StepIndexOf returns the index of the step declaring the named field.
func (m *Model) StepIndexOf(name string) (int, bool) {
	idx, ok := m.stepOf[name]
	return idx, ok
}

// Fields returns every field in declaration order across all steps.
func (m *Model) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, cloneField(m.fields[name]))
	}
	return out
}

// Pattern returns the anchored expression compiled for the named field, or
// nil when the field declares no pattern.
func (m *Model) Pattern(name string) *regexp.Regexp {
	return m.patterns[name]
}

// Defaults returns a fresh value map populated with each field's default.
func (m *Model) Defaults() FormValues {
	values := make(FormValues, len(m.order))
	for _, name := range m.order {
		values[name] = m.fields[name].DefaultValue()
	}
	return values
}

// FormSchema returns a copy of the underlying declarative schema.
func (m *Model) FormSchema() FormSchema {
	return FormSchema{
		Title:       m.title,
		Description: m.description,
		Steps:       m.Steps(),
	}
}
