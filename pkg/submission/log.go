package submission

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// LogSubmitter writes the submitted values to a zerolog logger and
// acknowledges immediately.
type LogSubmitter struct {
	logger zerolog.Logger
	ids    IDGenerator
	clock  Clock
}

// LogOption configures a LogSubmitter.
type LogOption func(*LogSubmitter)

// WithLogIDs overrides the id generator.
func WithLogIDs(ids IDGenerator) LogOption {
	return func(s *LogSubmitter) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithLogClock overrides the clock.
func WithLogClock(clock Clock) LogOption {
	return func(s *LogSubmitter) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewLogSubmitter returns a submitter that logs to logger.
func NewLogSubmitter(logger zerolog.Logger, options ...LogOption) *LogSubmitter {
	s := &LogSubmitter{logger: logger}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Submit implements Submitter.
func (s *LogSubmitter) Submit(ctx context.Context, values schema.FormValues) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	receipt := newReceipt("log", s.ids, s.clock)
	s.logger.Info().
		Str("submission_id", receipt.ID).
		Interface("values", map[string]any(values)).
		Msg("form submitted")
	return receipt, nil
}
