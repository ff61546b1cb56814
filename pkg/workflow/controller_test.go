package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

type recordingSubmitter struct {
	calls  []schema.FormValues
	err    error
	result submission.Receipt
}

func (r *recordingSubmitter) Submit(_ context.Context, values schema.FormValues) (submission.Receipt, error) {
	r.calls = append(r.calls, values)
	if r.err != nil {
		return submission.Receipt{}, r.err
	}
	return r.result, nil
}

func newController(t *testing.T, options ...workflow.Option) *workflow.Controller {
	t.Helper()

	c, err := workflow.New(testsupport.OnboardingModel(t), options...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func fill(t *testing.T, c *workflow.Controller, values schema.FormValues) {
	t.Helper()

	for name, value := range values {
		if _, err := c.SetField(name, value); err != nil {
			t.Fatalf("SetField(%s): %v", name, err)
		}
	}
}

// walkToReview fills every step and ends in review_pending.
func walkToReview(t *testing.T, c *workflow.Controller) {
	t.Helper()

	steps := testsupport.OnboardingStepValues()
	for i, values := range steps {
		fill(t, c, values)
		if i < len(steps)-1 {
			if _, err := c.Next(); err != nil {
				t.Fatalf("Next at step %d: %v", i, err)
			}
		}
	}
	if _, err := c.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestNew_InitialState(t *testing.T) {
	t.Parallel()

	c := newController(t)
	state := c.Snapshot()

	if state.StepIndex != 0 || state.Phase != workflow.PhaseEditing {
		t.Fatalf("unexpected initial position %d/%s", state.StepIndex, state.Phase)
	}
	if diff := cmp.Diff(c.Model().Defaults(), state.Values); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
	if len(state.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", state.Errors)
	}
	if _, err := workflow.New(nil); err == nil {
		t.Fatalf("expected error for nil model")
	}
}

func TestNext_BlockedByValidation(t *testing.T) {
	t.Parallel()

	c := newController(t)
	fill(t, c, schema.FormValues{"firstName": "Ada", "lastName": "Lovelace", "age": "17"})

	state, err := c.Next()
	if !errors.Is(err, workflow.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var verr *workflow.ValidationError
	if !errors.As(err, &verr) || verr.StepID != "personal-info" {
		t.Fatalf("expected ValidationError for personal-info, got %v", err)
	}
	if state.StepIndex != 0 {
		t.Fatalf("step advanced despite errors")
	}
	if diff := cmp.Diff(validation.Errors{"age": "Minimum value is 18"}, state.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	state, _ = c.SetField("age", "30")
	if _, ok := state.Errors["age"]; ok {
		t.Fatalf("SetField should clear the field error")
	}
	state, err = c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if state.StepIndex != 1 || len(state.Errors) != 0 {
		t.Fatalf("unexpected state after Next: %+v", state)
	}
}

func TestNext_HiddenRequiredFieldIgnored(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{Steps: []schema.Step{
		{ID: "one", Fields: []schema.FieldSpec{
			{Name: "hasLaptop", Type: schema.FieldTypeRadio, Required: true, Constraints: schema.Constraints{Options: []string{"Yes", "No"}}},
			{Name: "laptopModel", Type: schema.FieldTypeText, Required: true,
				VisibilityRule: &schema.VisibilityRule{DependsOnField: "hasLaptop", EqualsValue: "Yes"}},
		}},
		{ID: "two", Fields: []schema.FieldSpec{{Name: "notes", Type: schema.FieldTypeTextarea}}},
	}}
	c, err := workflow.New(testsupport.MustModel(t, form))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	fill(t, c, schema.FormValues{"hasLaptop": "No"})
	if _, err := c.Next(); err != nil {
		t.Fatalf("hidden required field blocked Next: %v", err)
	}
}

func TestPrevious_KeepsErrorsAndBounds(t *testing.T) {
	t.Parallel()

	c := newController(t)
	if _, err := c.Previous(); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("Previous at step 0: expected ErrInvalidTransition, got %v", err)
	}

	fill(t, c, testsupport.OnboardingStepValues()[0])
	if _, err := c.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := c.Next(); err == nil {
		t.Fatalf("expected validation failure on empty contact step")
	}
	before := c.Snapshot().Errors

	state, err := c.Previous()
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if state.StepIndex != 0 {
		t.Fatalf("StepIndex = %d, want 0", state.StepIndex)
	}
	if diff := cmp.Diff(before, state.Errors); diff != "" {
		t.Fatalf("Previous must not touch errors (-want +got):\n%s", diff)
	}
}

func TestNextAndSubmit_StepGuards(t *testing.T) {
	t.Parallel()

	c := newController(t)
	state, err := c.Submit()
	var terr *workflow.InvalidTransitionError
	if !errors.As(err, &terr) || terr.Event != workflow.EventSubmit {
		t.Fatalf("Submit before last step: expected InvalidTransitionError, got %v", err)
	}
	if state.Phase != workflow.PhaseEditing || state.StepIndex != 0 {
		t.Fatalf("rejected Submit changed state: %+v", state)
	}

	steps := testsupport.OnboardingStepValues()
	for i := 0; i < len(steps)-1; i++ {
		fill(t, c, steps[i])
		if _, err := c.Next(); err != nil {
			t.Fatalf("Next at step %d: %v", i, err)
		}
	}
	if !c.IsLastStep() {
		t.Fatalf("expected last step")
	}
	if _, err := c.Next(); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("Next at last step: expected ErrInvalidTransition, got %v", err)
	}
}

func TestSubmitConfirm_Sequence(t *testing.T) {
	t.Parallel()

	sub := &recordingSubmitter{result: submission.Receipt{ID: "r-1", Sink: "test"}}
	c := newController(t, workflow.WithSubmitter(sub))

	steps := testsupport.OnboardingStepValues()
	for i := 0; i < len(steps)-1; i++ {
		fill(t, c, steps[i])
		if _, err := c.Next(); err != nil {
			t.Fatalf("Next at step %d: %v", i, err)
		}
	}

	state, err := c.Submit()
	if !errors.Is(err, workflow.ErrValidationFailed) {
		t.Fatalf("Submit with unchecked confirm: expected ErrValidationFailed, got %v", err)
	}
	if diff := cmp.Diff(validation.Errors{"confirm": validation.MessageRequired}, state.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	fill(t, c, steps[len(steps)-1])
	state, err = c.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if state.Phase != workflow.PhaseReviewPending {
		t.Fatalf("Phase = %s, want review_pending", state.Phase)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("submitter called before Confirm")
	}

	if _, err := c.SetField("firstName", "Grace"); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("SetField during review: expected ErrInvalidTransition, got %v", err)
	}

	state, err = c.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if state.Phase != workflow.PhaseSubmitted {
		t.Fatalf("Phase = %s, want submitted", state.Phase)
	}
	if len(sub.calls) != 1 {
		t.Fatalf("submitter called %d times, want 1", len(sub.calls))
	}
	if diff := cmp.Diff(state.Values, sub.calls[0]); diff != "" {
		t.Fatalf("submitted values mismatch (-state +submitted):\n%s", diff)
	}
	if receipt, ok := c.Receipt(); !ok || receipt.ID != "r-1" {
		t.Fatalf("unexpected receipt %+v %v", receipt, ok)
	}

	for name, call := range map[string]func() (workflow.State, error){
		"confirm":  func() (workflow.State, error) { return c.Confirm(context.Background()) },
		"cancel":   c.Cancel,
		"next":     c.Next,
		"previous": c.Previous,
		"submit":   c.Submit,
	} {
		if _, err := call(); !errors.Is(err, workflow.ErrInvalidTransition) {
			t.Fatalf("%s after submit: expected ErrInvalidTransition, got %v", name, err)
		}
	}
	if len(sub.calls) != 1 {
		t.Fatalf("submitter called again after Submitted")
	}
}

func TestConfirm_OnlyFromReview(t *testing.T) {
	t.Parallel()

	c := newController(t)
	if _, err := c.Confirm(context.Background()); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := c.Cancel(); !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConfirm_SubmitterFailureStaysInReview(t *testing.T) {
	t.Parallel()

	boom := errors.New("sink down")
	sub := &recordingSubmitter{err: boom}
	c := newController(t, workflow.WithSubmitter(sub))
	walkToReview(t, c)

	state, err := c.Confirm(context.Background())
	if !errors.Is(err, workflow.ErrSubmissionFailed) || !errors.Is(err, boom) {
		t.Fatalf("expected SubmissionError wrapping boom, got %v", err)
	}
	if state.Phase != workflow.PhaseReviewPending {
		t.Fatalf("Phase = %s, want review_pending", state.Phase)
	}

	sub.err = nil
	if state, err = c.Confirm(context.Background()); err != nil || state.Phase != workflow.PhaseSubmitted {
		t.Fatalf("retry Confirm: state %s err %v", state.Phase, err)
	}
}

func TestCancel_ReturnsToLastStep(t *testing.T) {
	t.Parallel()

	c := newController(t)
	walkToReview(t, c)
	before := c.Snapshot()

	state, err := c.Cancel()
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if state.Phase != workflow.PhaseEditing || state.StepIndex != c.Model().LastStepIndex() {
		t.Fatalf("unexpected state after Cancel: %s/%d", state.Phase, state.StepIndex)
	}
	if diff := cmp.Diff(before.Values, state.Values); diff != "" {
		t.Fatalf("Cancel changed values (-want +got):\n%s", diff)
	}

	if _, err := c.SetField("confirm", false); err != nil {
		t.Fatalf("SetField after Cancel: %v", err)
	}
}

func TestSetField_RejectsUnknownAndWrongKind(t *testing.T) {
	t.Parallel()

	c := newController(t)

	if _, err := c.SetField("ghost", "x"); !errors.Is(err, workflow.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := c.SetField("confirm", "true"); !errors.Is(err, workflow.ErrValueType) {
		t.Fatalf("checkbox with string: expected ErrValueType, got %v", err)
	}
	if _, err := c.SetField("age", 30); !errors.Is(err, workflow.ErrValueType) {
		t.Fatalf("number with int: expected ErrValueType, got %v", err)
	}
	if v := c.Snapshot().Values["age"]; v != "" {
		t.Fatalf("rejected SetField stored %#v", v)
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	t.Parallel()

	c := newController(t)
	state := c.Snapshot()
	state.Values["firstName"] = "mutated"
	state.Errors["x"] = "y"

	again := c.Snapshot()
	if again.Values["firstName"] != "" || len(again.Errors) != 0 {
		t.Fatalf("snapshot mutation leaked into controller")
	}
}

func TestVisibleFieldsAndAutoFocus(t *testing.T) {
	t.Parallel()

	c := newController(t)
	if name, ok := c.AutoFocusField(); !ok || name != "firstName" {
		t.Fatalf("AutoFocusField = %q,%v", name, ok)
	}

	steps := testsupport.OnboardingStepValues()
	for i := 0; i < 2; i++ {
		fill(t, c, steps[i])
		if _, err := c.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if got := len(c.VisibleFields()); got != 3 {
		t.Fatalf("visible fields = %d, want 3 with hasLaptop unset", got)
	}
	fill(t, c, schema.FormValues{"hasLaptop": "Yes"})
	if got := len(c.VisibleFields()); got != 4 {
		t.Fatalf("visible fields = %d, want 4 with hasLaptop=Yes", got)
	}
	if name, _ := c.AutoFocusField(); name != "position" {
		t.Fatalf("AutoFocusField = %q, want position", name)
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	c := newController(t)
	fill(t, c, testsupport.OnboardingStepValues()[0])
	if _, err := c.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	var active, completed []string
	for _, p := range c.Progress() {
		if p.Active {
			active = append(active, p.ID)
		}
		if p.Completed {
			completed = append(completed, p.ID)
		}
	}
	if diff := cmp.Diff([]string{"contact"}, active); diff != "" {
		t.Fatalf("active mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"personal-info"}, completed); diff != "" {
		t.Fatalf("completed mismatch (-want +got):\n%s", diff)
	}
}

func TestObserver_ReceivesOutcomes(t *testing.T) {
	t.Parallel()

	var got []workflow.Outcome
	obs := workflow.ObserverFunc(func(o workflow.Observation) {
		got = append(got, o.Outcome)
	})
	c := newController(t, workflow.WithObserver(obs))

	_, _ = c.Previous()
	_, _ = c.Next()
	fill(t, c, testsupport.OnboardingStepValues()[0])
	_, _ = c.Next()

	want := []workflow.Outcome{workflow.OutcomeRejected, workflow.OutcomeInvalid, workflow.OutcomeOK}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestWithInitialValues(t *testing.T) {
	t.Parallel()

	c := newController(t, workflow.WithInitialValues(schema.FormValues{"firstName": "Ada"}))
	if v := c.Snapshot().Values["firstName"]; v != "Ada" {
		t.Fatalf("firstName = %#v, want Ada", v)
	}
}

func TestNew_RejectsMistypedInitialValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		values schema.FormValues
		want   error
	}{
		{name: "checkbox given string", values: schema.FormValues{"confirm": "true"}, want: workflow.ErrValueType},
		{name: "number given int", values: schema.FormValues{"age": 30}, want: workflow.ErrValueType},
		{name: "both mistyped", values: schema.FormValues{"confirm": "true", "age": 30}, want: workflow.ErrValueType},
		{name: "unknown name", values: schema.FormValues{"nickname": "x"}, want: workflow.ErrUnknownField},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := workflow.New(testsupport.OnboardingModel(t), workflow.WithInitialValues(tc.values))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if c != nil {
				t.Fatalf("controller returned alongside error")
			}
		})
	}
}
