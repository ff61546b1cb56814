package review

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

const (
	NotProvided = "Not provided"
	Yes         = "Yes"
	No          = "No"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Item is one reviewed field.
type Item struct {
	Name  string           `json:"name"`
	Label string           `json:"label"`
	Type  schema.FieldType `json:"type"`
	// Value is the display text. HTML is the same text sanitised for markup.
	Value string `json:"value"`
	HTML  string `json:"-"`
	Empty bool   `json:"empty"`
}

// Section groups the visible fields of one step.
type Section struct {
	StepID string `json:"stepId"`
	Label  string `json:"label"`
	Items  []Item `json:"items"`
}

// Summary is the review of a completed form.
type Summary struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
}

// Build lists the visible fields of every step in declaration order. Steps
// with no visible field are omitted. A nil evaluator uses exact equality.
func Build(model *schema.Model, values schema.FormValues, evaluator visibility.Evaluator) Summary {
	summary := Summary{Title: model.Title(), Description: model.Description()}
	for _, step := range model.Steps() {
		fields := visibility.VisibleFields(step, values, evaluator)
		if len(fields) == 0 {
			continue
		}
		section := Section{StepID: step.ID, Label: step.Label, Items: make([]Item, 0, len(fields))}
		if section.Label == "" {
			section.Label = step.ID
		}
		for _, field := range fields {
			section.Items = append(section.Items, item(field, values[field.Name]))
		}
		summary.Sections = append(summary.Sections, section)
	}
	return summary
}

// Items flattens the summary in display order.
func (s Summary) Items() []Item {
	var out []Item
	for _, section := range s.Sections {
		out = append(out, section.Items...)
	}
	return out
}

// WriteText writes a plain text rendering to w.
func (s Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "%s\n", s.Title)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len([]rune(s.Title))))
	}
	for i, section := range s.Sections {
		if i > 0 || s.Title != "" {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", section.Label)
		for _, it := range section.Items {
			fmt.Fprintf(&b, "  %s: %s\n", it.Label, it.Value)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Text returns the plain text rendering.
func (s Summary) Text() string {
	var b strings.Builder
	_ = s.WriteText(&b)
	return b.String()
}

func item(field schema.FieldSpec, value any) Item {
	it := Item{Name: field.Name, Label: field.DisplayLabel(), Type: field.Type}

	switch field.Type {
	case schema.FieldTypeCheckbox:
		checked, _ := value.(bool)
		it.Value = No
		if checked {
			it.Value = Yes
		}
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypeNumber,
		schema.FieldTypeTextarea, schema.FieldTypeSelect, schema.FieldTypeRadio:
		text, _ := value.(string)
		if text == "" {
			it.Value = NotProvided
			it.Empty = true
		} else {
			it.Value = text
		}
	default:
		it.Value = NotProvided
		it.Empty = true
	}
	it.HTML = sanitize(it.Value)
	return it
}

func sanitize(text string) string {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(policy.Sanitize(text))
}
