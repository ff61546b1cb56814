package tui

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/widgets"
)

// OutputFormat controls how Result serializes the collected values.
type OutputFormat string

const (
	// OutputFormatJSON emits the values as a JSON object.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits the review summary as plain text.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional message prefixes the session applies to Info
// output.
type Theme struct {
	StepPrefix  string
	ErrorPrefix string
	InfoPrefix  string
}

// Labels are the navigation choices offered after each step.
type Labels struct {
	Next    string
	Back    string
	Review  string
	Quit    string
	Confirm string
	None    string
}

// DefaultLabels returns the English navigation labels.
func DefaultLabels() Labels {
	return Labels{
		Next:    "Next",
		Back:    "Back",
		Review:  "Review",
		Quit:    "Quit",
		Confirm: "Submit this form?",
		None:    "(none)",
	}
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutputFormat selects the Result serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(s *Session) {
		if format != "" {
			s.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLabels overrides navigation labels. Empty entries keep the default.
func WithLabels(labels Labels) Option {
	return func(s *Session) {
		def := s.labels
		if labels.Next == "" {
			labels.Next = def.Next
		}
		if labels.Back == "" {
			labels.Back = def.Back
		}
		if labels.Review == "" {
			labels.Review = def.Review
		}
		if labels.Quit == "" {
			labels.Quit = def.Quit
		}
		if labels.Confirm == "" {
			labels.Confirm = def.Confirm
		}
		if labels.None == "" {
			labels.None = def.None
		}
		s.labels = labels
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithWidgetRegistry overrides how fields map to prompt kinds.
func WithWidgetRegistry(reg *widgets.Registry) Option {
	return func(s *Session) {
		if reg != nil {
			s.widgets = reg
		}
	}
}
