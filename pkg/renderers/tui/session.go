package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/review"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/widgets"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

// Session walks a workflow.Controller through a terminal: it prompts the
// visible fields of each step, navigates, shows the review and confirms.
type Session struct {
	ctrl         *workflow.Controller
	engine       *validation.Engine
	driver       PromptDriver
	widgets      *widgets.Registry
	outputFormat OutputFormat
	theme        Theme
	labels       Labels
	logger       zerolog.Logger
}

// NewSession binds a session to ctrl. The default driver uses survey on the
// process terminal.
func NewSession(ctrl *workflow.Controller, options ...Option) (*Session, error) {
	if ctrl == nil {
		return nil, ErrNilController
	}
	s := &Session{
		ctrl:         ctrl,
		engine:       validation.New(ctrl.Model()),
		outputFormat: OutputFormatJSON,
		labels:       DefaultLabels(),
		logger:       zerolog.Nop(),
		widgets:      widgets.NewRegistry(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// Run drives the workflow until it is submitted. ErrAborted is returned when
// the user quits; the controller keeps whatever was entered.
func (s *Session) Run(ctx context.Context) (workflow.State, error) {
	if ctx == nil {
		return workflow.State{}, errors.New("tui: context is required")
	}
	retry := false
	for {
		if err := ctx.Err(); err != nil {
			return s.ctrl.Snapshot(), err
		}
		switch s.ctrl.Phase() {
		case workflow.PhaseSubmitted:
			return s.ctrl.Snapshot(), nil
		case workflow.PhaseReviewPending:
			if err := s.runReview(ctx); err != nil {
				return s.ctrl.Snapshot(), err
			}
			retry = false
		case workflow.PhaseEditing:
			var err error
			retry, err = s.runStep(ctx, retry)
			if err != nil {
				return s.ctrl.Snapshot(), err
			}
		}
	}
}

// Result serializes the current values in the configured output format.
func (s *Session) Result() ([]byte, error) {
	state := s.ctrl.Snapshot()
	switch s.outputFormat {
	case OutputFormatPrettyText:
		return []byte(review.Build(s.ctrl.Model(), state.Values, nil).Text()), nil
	default:
		return json.MarshalIndent(state.Values, "", "  ")
	}
}

// runStep prompts the current step and applies the chosen navigation. When
// onlyInvalid is set, only fields with a pending error are prompted. The
// returned flag reports whether the step was rejected by validation.
func (s *Session) runStep(ctx context.Context, onlyInvalid bool) (bool, error) {
	state := s.ctrl.Snapshot()
	step := s.ctrl.CurrentStep()
	if !onlyInvalid {
		if err := s.info(ctx, s.theme.StepPrefix, s.stepHeader(state.StepIndex, step)); err != nil {
			return false, err
		}
	}

	for _, field := range step.Fields {
		if !s.visible(field.Name) {
			continue
		}
		msg, invalid := s.ctrl.Snapshot().Errors[field.Name]
		if onlyInvalid && !invalid {
			continue
		}
		if invalid {
			if err := s.info(ctx, s.theme.ErrorPrefix, fmt.Sprintf("%s: %s", field.DisplayLabel(), msg)); err != nil {
				return false, err
			}
		}
		if err := s.promptField(ctx, field); err != nil {
			return false, err
		}
	}

	options, actions := s.navigation()
	idx, err := s.driver.Select(ctx, SelectConfig{Message: step.Label, Options: options, DefaultIndex: 0})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(actions) {
		return false, nil
	}

	switch actions[idx] {
	case actionNext:
		_, err = s.ctrl.Next()
	case actionReview:
		_, err = s.ctrl.Submit()
	case actionBack:
		_, err = s.ctrl.Previous()
	default:
		s.logger.Debug().Int("step", state.StepIndex).Msg("tui session quit")
		return false, ErrAborted
	}

	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		if ierr := s.info(ctx, s.theme.ErrorPrefix, fmt.Sprintf("Please fix %d field(s) before continuing.", len(verr.Errors))); ierr != nil {
			return false, ierr
		}
		return true, nil
	}
	return false, err
}

func (s *Session) runReview(ctx context.Context) error {
	summary := review.Build(s.ctrl.Model(), s.ctrl.Snapshot().Values, nil)
	if err := s.info(ctx, s.theme.InfoPrefix, strings.TrimRight(summary.Text(), "\n")); err != nil {
		return err
	}

	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: s.labels.Confirm, Default: true})
	if err != nil {
		return err
	}
	if !ok {
		_, err := s.ctrl.Cancel()
		return err
	}

	if _, err := s.ctrl.Confirm(ctx); err != nil {
		if !errors.Is(err, workflow.ErrSubmissionFailed) {
			return err
		}
		return s.info(ctx, s.theme.ErrorPrefix, "Submission failed: "+errors.Unwrap(err).Error())
	}
	if receipt, ok := s.ctrl.Receipt(); ok {
		return s.info(ctx, s.theme.InfoPrefix, "Submitted ("+receipt.ID+")")
	}
	return nil
}

func (s *Session) promptField(ctx context.Context, field schema.FieldSpec) error {
	label := field.DisplayLabel()
	if field.Required {
		label += " *"
	}
	current := s.ctrl.Snapshot().Values[field.Name]

	widget, _ := s.widgets.Resolve(field)

	var value any
	switch widget {
	case widgets.WidgetCheckbox:
		checked, _ := current.(bool)
		resp, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked})
		if err != nil {
			return err
		}
		value = resp
	case widgets.WidgetDropdown, widgets.WidgetSearchSelect, widgets.WidgetRadioGroup:
		options := append([]string(nil), field.Constraints.Options...)
		if !field.Required {
			options = append([]string{s.labels.None}, options...)
		}
		text, _ := current.(string)
		def := indexOf(options, text)
		if def < 0 {
			def = 0
		}
		cfg := SelectConfig{Message: label, Options: options, DefaultIndex: def}
		if widget == widgets.WidgetSearchSelect {
			cfg.PageSize = widgets.SearchThreshold
		}
		idx, err := s.driver.Select(ctx, cfg)
		if err != nil {
			return err
		}
		switch {
		case idx < 0 || idx >= len(options):
			value = text
		case !field.Required && idx == 0:
			value = ""
		default:
			value = options[idx]
		}
	case widgets.WidgetTextArea:
		text, _ := current.(string)
		resp, err := s.driver.TextArea(ctx, TextAreaConfig{
			Message:   label,
			Default:   text,
			Help:      field.Constraints.Placeholder,
			Validator: s.validator(field),
		})
		if err != nil {
			return err
		}
		value = resp
	default:
		text, _ := current.(string)
		resp, err := s.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   text,
			Help:      field.Constraints.Placeholder,
			Validator: s.validator(field),
		})
		if err != nil {
			return err
		}
		value = resp
	}

	_, err := s.ctrl.SetField(field.Name, value)
	return err
}

func (s *Session) validator(field schema.FieldSpec) func(string) error {
	return func(text string) error {
		if v, failed := s.engine.ValidateField(field, schema.FormValues{field.Name: text}); failed {
			return errors.New(v.Message)
		}
		return nil
	}
}

type action int

const (
	actionNext action = iota
	actionReview
	actionBack
	actionQuit
)

func (s *Session) navigation() ([]string, []action) {
	var options []string
	var actions []action
	if s.ctrl.IsLastStep() {
		options = append(options, s.labels.Review)
		actions = append(actions, actionReview)
	} else {
		options = append(options, s.labels.Next)
		actions = append(actions, actionNext)
	}
	if s.ctrl.Snapshot().StepIndex > 0 {
		options = append(options, s.labels.Back)
		actions = append(actions, actionBack)
	}
	options = append(options, s.labels.Quit)
	actions = append(actions, actionQuit)
	return options, actions
}

func (s *Session) visible(name string) bool {
	for _, f := range s.ctrl.VisibleFields() {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (s *Session) stepHeader(index int, step schema.Step) string {
	label := step.Label
	if label == "" {
		label = step.ID
	}
	return fmt.Sprintf("Step %d of %d: %s", index+1, s.ctrl.Model().TotalSteps(), label)
}

func (s *Session) info(ctx context.Context, prefix, msg string) error {
	return s.driver.Info(ctx, prefix+msg)
}
