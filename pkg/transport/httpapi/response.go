package httpapi

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

const (
	codeBadRequest        = "bad_request"
	codeUnknownSession    = "unknown_session"
	codeUnknownField      = "unknown_field"
	codeValueType         = "invalid_value_type"
	codeInvalidTransition = "invalid_transition"
	codeValidation        = "validation_failed"
	codeSubmission        = "submission_failed"
	codeTooManySessions   = "too_many_sessions"
	codeInternal          = "internal_error"
)

type stateResponse struct {
	Session   string                  `json:"session"`
	State     workflow.State          `json:"state"`
	Step      stepResponse            `json:"step"`
	Progress  []workflow.StepProgress `json:"progress"`
	AutoFocus string                  `json:"autoFocus,omitempty"`
	Receipt   *submission.Receipt     `json:"receipt,omitempty"`
}

type stepResponse struct {
	ID      string            `json:"id"`
	Label   string            `json:"label,omitempty"`
	Fields  []string          `json:"fields"`
	Widgets map[string]string `json:"widgets"`
	Last    bool              `json:"last"`
}

func (h *Handler) describe(id string, ctrl *workflow.Controller, state workflow.State) stateResponse {
	step := ctrl.CurrentStep()
	visible := ctrl.VisibleFields()
	names := make([]string, 0, len(visible))
	for _, f := range visible {
		names = append(names, f.Name)
	}
	resp := stateResponse{
		Session:  id,
		State:    state,
		Progress: ctrl.Progress(),
		Step: stepResponse{
			ID:      step.ID,
			Label:   step.Label,
			Fields:  names,
			Widgets: h.widgets.ResolveAll(visible),
			Last:    ctrl.IsLastStep(),
		},
	}
	if name, ok := ctrl.AutoFocusField(); ok {
		resp.AutoFocus = name
	}
	return resp
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Errors validation.Errors `json:"errors,omitempty"`
}

func (h *Handler) writeWorkflowError(w http.ResponseWriter, id string, ctrl *workflow.Controller, state workflow.State, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error(), verr.Errors)
	case errors.Is(err, workflow.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error(), nil)
	case errors.Is(err, workflow.ErrUnknownField):
		writeError(w, http.StatusBadRequest, codeUnknownField, err.Error(), nil)
	case errors.Is(err, workflow.ErrValueType):
		writeError(w, http.StatusBadRequest, codeValueType, err.Error(), nil)
	case errors.Is(err, workflow.ErrSubmissionFailed):
		h.logger.Warn().Err(err).Str("session", id).Str("phase", string(state.Phase)).Msg("submission failed")
		writeError(w, http.StatusBadGateway, codeSubmission, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Str("session", id).Str("phase", string(ctrl.Phase())).Msg("workflow error")
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error(), nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields validation.Errors) {
	writeJSON(w, status, errorResponse{Error: message, Code: code, Errors: fields})
}
