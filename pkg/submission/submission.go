package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrNoSubmitters is returned by Multi when it wraps nothing.
var ErrNoSubmitters = errors.New("submission: no submitters configured")

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID          string    `json:"id"`
	Sink        string    `json:"sink"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submitter hands a completed form to its destination. Implementations must
// not retain values after returning.
type Submitter interface {
	Submit(ctx context.Context, values schema.FormValues) (Receipt, error)
}

// Func adapts a plain function to Submitter.
type Func func(ctx context.Context, values schema.FormValues) (Receipt, error)

// Submit calls f.
func (f Func) Submit(ctx context.Context, values schema.FormValues) (Receipt, error) {
	return f(ctx, values)
}

// IDGenerator produces submission ids.
type IDGenerator func() string

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// Clock returns the current time; overridden in tests.
type Clock func() time.Time

func newReceipt(sink string, ids IDGenerator, clock Clock) Receipt {
	if ids == nil {
		ids = NewID
	}
	if clock == nil {
		clock = time.Now
	}
	return Receipt{ID: ids(), Sink: sink, SubmittedAt: clock().UTC()}
}

// Multi fans a submission out to every submitter in order and stops at the
// first failure. The receipt of the first submitter is returned.
type Multi []Submitter

// Submit implements Submitter.
func (m Multi) Submit(ctx context.Context, values schema.FormValues) (Receipt, error) {
	if len(m) == 0 {
		return Receipt{}, ErrNoSubmitters
	}
	var first Receipt
	sinks := make([]string, 0, len(m))
	for i, s := range m {
		if s == nil {
			continue
		}
		receipt, err := s.Submit(ctx, values.Clone())
		if err != nil {
			return Receipt{}, fmt.Errorf("submission: sink %d: %w", i, err)
		}
		if len(sinks) == 0 {
			first = receipt
		}
		sinks = append(sinks, receipt.Sink)
	}
	if len(sinks) == 0 {
		return Receipt{}, ErrNoSubmitters
	}
	first.Sink = strings.Join(sinks, ",")
	return first, nil
}
