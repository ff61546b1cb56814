package review

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"
)

// DefaultTemplate renders a Summary as a definition list per step. Item.HTML
// is already sanitised and is emitted unescaped.
const DefaultTemplate = `<section class="formflow-review">
{% if summary.Title %}<h2>{{ summary.Title }}</h2>
{% endif %}{% for section in summary.Sections %}<div class="formflow-review__step" data-step="{{ section.StepID }}">
<h3>{{ section.Label }}</h3>
<dl>
{% for item in section.Items %}<dt>{{ item.Label }}</dt>
<dd{% if item.Empty %} class="formflow-review__empty"{% endif %}>{{ item.HTML|safe }}</dd>
{% endfor %}</dl>
</div>
{% endfor %}{% if confirmLabel %}<p class="formflow-review__confirm">{{ confirmLabel }}</p>
{% endif %}</section>
`

// HTMLRenderer renders summaries with a pongo2 template.
type HTMLRenderer struct {
	tmpl         *pongo2.Template
	confirmLabel string
}

// HTMLOption configures an HTMLRenderer.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	source       string
	confirmLabel string
}

// WithTemplate replaces the default template. The template receives
// "summary" and "confirmLabel".
func WithTemplate(source string) HTMLOption {
	return func(c *htmlConfig) {
		if source != "" {
			c.source = source
		}
	}
}

// WithConfirmLabel adds a closing prompt to the default template.
func WithConfirmLabel(label string) HTMLOption {
	return func(c *htmlConfig) {
		c.confirmLabel = label
	}
}

// NewHTMLRenderer compiles the template once.
func NewHTMLRenderer(options ...HTMLOption) (*HTMLRenderer, error) {
	cfg := &htmlConfig{source: DefaultTemplate}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	tmpl, err := pongo2.FromString(cfg.source)
	if err != nil {
		return nil, fmt.Errorf("review: parse template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl, confirmLabel: cfg.confirmLabel}, nil
}

// Render writes the HTML rendering of summary to w.
func (r *HTMLRenderer) Render(w io.Writer, summary Summary) error {
	if r == nil || r.tmpl == nil {
		return errors.New("review: html renderer is nil")
	}
	var buf bytes.Buffer
	err := r.tmpl.ExecuteWriter(pongo2.Context{
		"summary":      summary,
		"confirmLabel": r.confirmLabel,
	}, &buf)
	if err != nil {
		return fmt.Errorf("review: execute template: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// RenderString returns the HTML rendering of summary.
func (r *HTMLRenderer) RenderString(summary Summary) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, summary); err != nil {
		return "", err
	}
	return buf.String(), nil
}
