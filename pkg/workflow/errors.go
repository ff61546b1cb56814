package workflow

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/validation"
)

var (
	// ErrInvalidTransition marks a request the current phase or step does not
	// allow. The state is left unchanged.
	ErrInvalidTransition = errors.New("workflow: invalid transition")
	// ErrValidationFailed is returned by Next and Submit when the current step
	// has violations. The errors are stored in the state.
	ErrValidationFailed = errors.New("workflow: validation failed")
	// ErrUnknownField is returned by SetField for names outside the schema.
	ErrUnknownField = errors.New("workflow: unknown field")
	// ErrValueType is returned by SetField when the value kind does not match
	// the field type.
	ErrValueType = errors.New("workflow: value has wrong type")
	// ErrSubmissionFailed matches every SubmissionError.
	ErrSubmissionFailed = errors.New("workflow: submission failed")
)

// InvalidTransitionError describes a rejected request.
type InvalidTransitionError struct {
	Event     Event
	Phase     Phase
	StepIndex int
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("workflow: cannot %s in phase %s at step %d", e.Event, e.Phase, e.StepIndex)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is ErrInvalidTransition.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ValidationError carries the violations that blocked Next or Submit.
type ValidationError struct {
	StepIndex int
	StepID    string
	Errors    validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow: step %q has %d invalid field(s)", e.StepID, len(e.Errors))
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// SubmissionError wraps a Submitter failure. The workflow stays in review.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "workflow: submission failed: " + e.Err.Error()
}

// Unwrap exposes the submitter error.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSubmissionFailed.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}
