package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or chose to
	// quit.
	ErrAborted = errors.New("tui: aborted")
	// ErrNilController is returned by NewSession without a controller.
	ErrNilController = errors.New("tui: workflow controller is nil")
)
