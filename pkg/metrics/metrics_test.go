package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formflow/pkg/metrics"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

func TestCollector_ObservesWorkflow(t *testing.T) {
	t.Parallel()

	collector := metrics.New(prometheus.NewRegistry())
	failing := true
	sub := submission.Func(func(context.Context, schema.FormValues) (submission.Receipt, error) {
		if failing {
			return submission.Receipt{}, errors.New("down")
		}
		return submission.Receipt{ID: "x"}, nil
	})

	c, err := workflow.New(testsupport.OnboardingModel(t),
		workflow.WithObserver(collector), workflow.WithSubmitter(sub))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	collector.SessionStarted()

	_, _ = c.Next()
	steps := testsupport.OnboardingStepValues()
	for i, values := range steps {
		for name, v := range values {
			if _, err := c.SetField(name, v); err != nil {
				t.Fatalf("SetField: %v", err)
			}
		}
		if i < len(steps)-1 {
			if _, err := c.Next(); err != nil {
				t.Fatalf("Next: %v", err)
			}
		}
	}
	if _, err := c.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, _ = c.Confirm(context.Background())
	failing = false
	if _, err := c.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if got := testutil.ToFloat64(collector.Transitions.WithLabelValues("next", "ok")); got != 3 {
		t.Fatalf("next ok = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.ValidationFailures.WithLabelValues("0")); got != 1 {
		t.Fatalf("validation failures on step 0 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Submissions.WithLabelValues("failure")); got != 1 {
		t.Fatalf("failed submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Submissions.WithLabelValues("success")); got != 1 {
		t.Fatalf("successful submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ActiveSessions); got != 0 {
		t.Fatalf("active sessions = %v, want 0", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()

	collector := metrics.New(nil)
	collector.Observe(workflow.Observation{
		Event:    workflow.EventConfirm,
		Outcome:  workflow.OutcomeOK,
		Duration: 20 * time.Millisecond,
	})

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `formflow_submissions_total{result="success"} 1`) {
		t.Fatalf("metrics output missing submissions counter:\n%s", body)
	}
}
