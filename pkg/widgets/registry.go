package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetCheckbox     = "checkbox"
	WidgetRadioGroup   = "radio-group"
	WidgetSearchSelect = "search-select"
	WidgetDropdown     = "dropdown"
	WidgetTextArea     = "textarea"
	WidgetNumber       = "number-input"
	WidgetEmail        = "email-input"
	WidgetText         = "text-input"
)

// SearchThreshold is the option count above which a select field resolves to
// WidgetSearchSelect.
const SearchThreshold = 12

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field schema.FieldSpec) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on pinned names or registered
// matchers. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu     sync.RWMutex
	rules  []rule
	pinned map[string]string
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Pin forces the widget for one field name, bypassing matchers. An empty
// widget removes the pin.
func (r *Registry) Pin(fieldName, widget string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	widget = strings.TrimSpace(widget)
	if widget == "" {
		delete(r.pinned, fieldName)
		return
	}
	if r.pinned == nil {
		r.pinned = make(map[string]string)
	}
	r.pinned[fieldName] = widget
}

// Resolve returns the widget name for a field. Pinned widgets are honoured
// before matcher evaluation.
func (r *Registry) Resolve(field schema.FieldSpec) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if widget, ok := r.pinned[field.Name]; ok {
		r.mu.RUnlock()
		return widget, true
	}
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// ResolveAll maps each field name to its widget. Unresolved fields are left
// out.
func (r *Registry) ResolveAll(fields []schema.FieldSpec) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		if widget, ok := r.Resolve(field); ok {
			out[field.Name] = widget
		}
	}
	return out
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeCheckbox
	})

	r.Register(WidgetRadioGroup, 80, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeRadio
	})

	r.Register(WidgetSearchSelect, 75, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeSelect && len(field.Constraints.Options) > SearchThreshold
	})

	r.Register(WidgetDropdown, 70, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeSelect
	})

	r.Register(WidgetTextArea, 60, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeTextarea
	})

	r.Register(WidgetNumber, 50, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeNumber
	})

	r.Register(WidgetEmail, 40, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeEmail
	})

	r.Register(WidgetText, 0, func(field schema.FieldSpec) bool {
		return field.Type == schema.FieldTypeText
	})
}
