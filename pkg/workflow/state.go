package workflow

import (
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Phase is the coarse position of the workflow.
type Phase string

const (
	PhaseEditing       Phase = "editing"
	PhaseReviewPending Phase = "review_pending"
	PhaseSubmitted     Phase = "submitted"
)

// Event names a request made to the controller.
type Event string

const (
	EventNext     Event = "next"
	EventPrevious Event = "previous"
	EventSubmit   Event = "submit"
	EventConfirm  Event = "confirm"
	EventCancel   Event = "cancel"
	EventSetField Event = "set_field"
)

// State is a snapshot of the workflow. It shares nothing with the
// controller.
type State struct {
	StepIndex int               `json:"stepIndex"`
	Phase     Phase             `json:"phase"`
	Values    schema.FormValues `json:"values"`
	Errors    validation.Errors `json:"errors"`
}

// StepProgress describes one entry of a step indicator.
type StepProgress struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}
