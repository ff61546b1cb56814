package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Controller drives one run of a form through its steps, review and
// submission. It is not safe for concurrent use.
type Controller struct {
	model     *schema.Model
	store     *formstate.Store
	engine    *validation.Engine
	machine   *fsm.FSM
	stepIndex int
	receipt   *submission.Receipt

	evaluator visibility.Evaluator
	submitter submission.Submitter
	observers observers
	logger    zerolog.Logger
	initial   schema.FormValues
	now       func() time.Time
}

// New returns a controller in the editing phase at the first step, with
// default values and no errors.
func New(model *schema.Model, options ...Option) (*Controller, error) {
	if model == nil {
		return nil, fmt.Errorf("workflow: schema model is nil")
	}

	c := &Controller{
		model:     model,
		evaluator: visibility.Default,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.submitter == nil {
		c.submitter = submission.NewLogSubmitter(c.logger)
	}
	if err := checkInitial(model, c.initial); err != nil {
		return nil, err
	}

	c.store = formstate.New(model,
		formstate.WithEvaluator(c.evaluator),
		formstate.WithValues(c.initial),
	)
	c.engine = validation.New(model, validation.WithEvaluator(c.evaluator))
	c.machine = fsm.NewFSM(
		string(PhaseEditing),
		fsm.Events{
			{Name: string(EventSubmit), Src: []string{string(PhaseEditing)}, Dst: string(PhaseReviewPending)},
			{Name: string(EventConfirm), Src: []string{string(PhaseReviewPending)}, Dst: string(PhaseSubmitted)},
			{Name: string(EventCancel), Src: []string{string(PhaseReviewPending)}, Dst: string(PhaseEditing)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.logger.Debug().
					Str("event", e.Event).
					Str("from", e.Src).
					Str("to", e.Dst).
					Int("step", c.stepIndex).
					Msg("workflow phase changed")
			},
		},
	)
	return c, nil
}

// Model returns the schema the controller runs.
func (c *Controller) Model() *schema.Model {
	return c.model
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return Phase(c.machine.Current())
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	return State{
		StepIndex: c.stepIndex,
		Phase:     c.Phase(),
		Values:    c.store.Values(),
		Errors:    c.store.Errors(),
	}
}

// Receipt returns the receipt of a successful Confirm.
func (c *Controller) Receipt() (submission.Receipt, bool) {
	if c.receipt == nil {
		return submission.Receipt{}, false
	}
	return *c.receipt, true
}

// CurrentStep returns the step at the current index.
func (c *Controller) CurrentStep() schema.Step {
	step, _ := c.model.StepAt(c.stepIndex)
	return step
}

// IsLastStep reports whether the current step is the final one.
func (c *Controller) IsLastStep() bool {
	return c.stepIndex == c.model.LastStepIndex()
}

// VisibleFields returns the visible fields of the current step.
func (c *Controller) VisibleFields() []schema.FieldSpec {
	return c.store.VisibleFields(c.stepIndex)
}

// AutoFocusField names the field a presentation layer should focus: the
// step's autofocus field when visible, otherwise the first visible field.
func (c *Controller) AutoFocusField() (string, bool) {
	visible := c.VisibleFields()
	if len(visible) == 0 {
		return "", false
	}
	if name := c.CurrentStep().AutoFocusFieldName; name != "" {
		for _, field := range visible {
			if field.Name == name {
				return name, true
			}
		}
	}
	return visible[0].Name, true
}

// Progress returns step indicator entries. Steps before the current one are
// completed; once the workflow leaves editing every step is.
func (c *Controller) Progress() []StepProgress {
	phase := c.Phase()
	steps := c.model.Steps()
	out := make([]StepProgress, 0, len(steps))
	for i, step := range steps {
		out = append(out, StepProgress{
			Index:     i,
			ID:        step.ID,
			Label:     step.Label,
			Active:    phase == PhaseEditing && i == c.stepIndex,
			Completed: i < c.stepIndex || phase != PhaseEditing,
		})
	}
	return out
}

// SetField records a value for name and clears its pending error. Values are
// frozen outside the editing phase.
func (c *Controller) SetField(name string, value any) (State, error) {
	if phase := c.Phase(); phase != PhaseEditing {
		return c.reject(EventSetField, "values are frozen outside editing")
	}
	field, ok := c.model.FieldByName(name)
	if !ok {
		return c.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err := checkKind(field, value); err != nil {
		return c.Snapshot(), err
	}
	c.store.SetField(name, value)
	return c.Snapshot(), nil
}

// Next validates the current step and advances on success. On failure the
// step stays put and the returned error matches ErrValidationFailed.
func (c *Controller) Next() (State, error) {
	if c.Phase() != PhaseEditing {
		return c.reject(EventNext, "")
	}
	if c.IsLastStep() {
		return c.reject(EventNext, "already at the last step")
	}
	from := c.stepIndex
	if err := c.validateCurrent(EventNext); err != nil {
		return c.Snapshot(), err
	}
	c.stepIndex++
	c.store.ClearErrors()
	c.logger.Debug().Int("from", from).Int("to", c.stepIndex).Msg("workflow advanced")
	c.observe(Observation{Event: EventNext, Outcome: OutcomeOK, From: PhaseEditing, To: PhaseEditing, FromStep: from, ToStep: c.stepIndex})
	return c.Snapshot(), nil
}

// Previous moves back one step without validating. Pending errors are kept.
func (c *Controller) Previous() (State, error) {
	if c.Phase() != PhaseEditing {
		return c.reject(EventPrevious, "")
	}
	if c.stepIndex == 0 {
		return c.reject(EventPrevious, "already at the first step")
	}
	from := c.stepIndex
	c.stepIndex--
	c.logger.Debug().Int("from", from).Int("to", c.stepIndex).Msg("workflow went back")
	c.observe(Observation{Event: EventPrevious, Outcome: OutcomeOK, From: PhaseEditing, To: PhaseEditing, FromStep: from, ToStep: c.stepIndex})
	return c.Snapshot(), nil
}

// Submit validates the last step and moves to review on success.
func (c *Controller) Submit() (State, error) {
	if c.Phase() != PhaseEditing {
		return c.reject(EventSubmit, "")
	}
	if !c.IsLastStep() {
		return c.reject(EventSubmit, "not at the last step")
	}
	if err := c.validateCurrent(EventSubmit); err != nil {
		return c.Snapshot(), err
	}
	c.store.ClearErrors()
	if err := c.fire(context.Background(), EventSubmit); err != nil {
		return c.Snapshot(), err
	}
	c.observe(Observation{Event: EventSubmit, Outcome: OutcomeOK, From: PhaseEditing, To: PhaseReviewPending, FromStep: c.stepIndex, ToStep: c.stepIndex})
	return c.Snapshot(), nil
}

// Confirm hands a copy of the values to the submitter. Success ends the
// workflow; failure keeps it in review and returns a SubmissionError.
func (c *Controller) Confirm(ctx context.Context) (State, error) {
	if c.Phase() != PhaseReviewPending {
		return c.reject(EventConfirm, "")
	}

	started := c.now()
	receipt, err := c.submitter.Submit(ctx, c.store.Values())
	elapsed := c.now().Sub(started)
	if err != nil {
		c.logger.Error().Err(err).Dur("elapsed", elapsed).Msg("form submission failed")
		c.observe(Observation{
			Event: EventConfirm, Outcome: OutcomeFailed,
			From: PhaseReviewPending, To: PhaseReviewPending,
			FromStep: c.stepIndex, ToStep: c.stepIndex,
			Duration: elapsed, Err: err,
		})
		return c.Snapshot(), &SubmissionError{Err: err}
	}

	if err := c.fire(ctx, EventConfirm); err != nil {
		return c.Snapshot(), err
	}
	c.receipt = &receipt
	c.logger.Info().Str("submission_id", receipt.ID).Str("sink", receipt.Sink).Dur("elapsed", elapsed).Msg("form submitted")
	c.observe(Observation{
		Event: EventConfirm, Outcome: OutcomeOK,
		From: PhaseReviewPending, To: PhaseSubmitted,
		FromStep: c.stepIndex, ToStep: c.stepIndex,
		Duration: elapsed,
	})
	return c.Snapshot(), nil
}

// Cancel leaves review and returns to editing the last step. Values and
// errors are untouched.
func (c *Controller) Cancel() (State, error) {
	if c.Phase() != PhaseReviewPending {
		return c.reject(EventCancel, "")
	}
	if err := c.fire(context.Background(), EventCancel); err != nil {
		return c.Snapshot(), err
	}
	c.observe(Observation{Event: EventCancel, Outcome: OutcomeOK, From: PhaseReviewPending, To: PhaseEditing, FromStep: c.stepIndex, ToStep: c.stepIndex})
	return c.Snapshot(), nil
}

// ValidateAll reports violations across every step without touching state.
func (c *Controller) ValidateAll() validation.Errors {
	return c.engine.ValidateAll(c.store.Values())
}

func (c *Controller) validateCurrent(event Event) error {
	step := c.CurrentStep()
	errs := c.engine.ValidateStep(step, c.store.Values())
	if len(errs) == 0 {
		return nil
	}
	c.store.ReplaceErrors(errs)
	c.logger.Debug().
		Str("event", string(event)).
		Str("step", step.ID).
		Int("errors", len(errs)).
		Msg("workflow step invalid")
	c.observe(Observation{
		Event: event, Outcome: OutcomeInvalid,
		From: PhaseEditing, To: PhaseEditing,
		FromStep: c.stepIndex, ToStep: c.stepIndex,
		Errors: len(errs),
	})
	return &ValidationError{StepIndex: c.stepIndex, StepID: step.ID, Errors: errs.Clone()}
}

func (c *Controller) fire(ctx context.Context, event Event) error {
	// Phase changes never block; detach from caller cancellation so the
	// machine cannot be left mid-transition.
	if err := c.machine.Event(context.WithoutCancel(ctx), string(event)); err != nil {
		return &InvalidTransitionError{Event: event, Phase: c.Phase(), StepIndex: c.stepIndex, Reason: err.Error()}
	}
	return nil
}

func (c *Controller) reject(event Event, reason string) (State, error) {
	err := &InvalidTransitionError{Event: event, Phase: c.Phase(), StepIndex: c.stepIndex, Reason: reason}
	c.logger.Debug().Err(err).Msg("workflow request rejected")
	c.observe(Observation{
		Event: event, Outcome: OutcomeRejected,
		From: c.Phase(), To: c.Phase(),
		FromStep: c.stepIndex, ToStep: c.stepIndex,
		Err: err,
	})
	return c.Snapshot(), err
}

func (c *Controller) observe(o Observation) {
	if len(c.observers) == 0 {
		return
	}
	c.observers.Observe(o)
}

// checkInitial applies the SetField rules to prefilled values, in name order
// so the reported error is stable.
func checkInitial(model *schema.Model, values schema.FormValues) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field, ok := model.FieldByName(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		if err := checkKind(field, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func checkKind(field schema.FieldSpec, value any) error {
	switch field.Type {
	case schema.FieldTypeCheckbox:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: field %q expects a boolean, got %T", ErrValueType, field.Name, value)
		}
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypeNumber,
		schema.FieldTypeTextarea, schema.FieldTypeSelect, schema.FieldTypeRadio:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: field %q expects a string, got %T", ErrValueType, field.Name, value)
		}
	default:
		return fmt.Errorf("%w: field %q has unsupported type %q", ErrValueType, field.Name, field.Type)
	}
	return nil
}
