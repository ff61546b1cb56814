package workflow

import "time"

// Outcome classifies how a request ended.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Observation is reported to an Observer after each request.
type Observation struct {
	Event    Event
	Outcome  Outcome
	From     Phase
	To       Phase
	FromStep int
	ToStep   int
	Errors   int
	Duration time.Duration
	Err      error
}

// Observer receives workflow observations. Implementations must not call
// back into the controller.
type Observer interface {
	Observe(Observation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Observation)

// Observe calls f.
func (f ObserverFunc) Observe(o Observation) {
	f(o)
}

type observers []Observer

func (o observers) Observe(obs Observation) {
	for _, ob := range o {
		ob.Observe(obs)
	}
}
