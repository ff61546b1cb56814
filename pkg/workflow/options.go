package workflow

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSubmitter sets the collaborator called by Confirm. Without it Confirm
// logs the values and acknowledges.
func WithSubmitter(s submission.Submitter) Option {
	return func(c *Controller) {
		if s != nil {
			c.submitter = s
		}
	}
}

// WithObserver registers an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithEvaluator overrides the visibility policy for both display and
// validation.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(c *Controller) {
		if e != nil {
			c.evaluator = e
		}
	}
}

// WithInitialValues prefills values on top of the schema defaults. New rejects
// names the schema lacks and values of the wrong kind, as SetField does.
func WithInitialValues(values schema.FormValues) Option {
	return func(c *Controller) {
		c.initial = values.Clone()
	}
}

// WithClock overrides the time source used for submission timings.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}
