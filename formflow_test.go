package formflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

func TestLoadModel_FromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "onboarding.json")
	if err := os.WriteFile(path, testsupport.MustReadFixture(t, testsupport.OnboardingFixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src, err := formflow.SourceFromLocation(path)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	model, err := formflow.LoadModel(context.Background(), src)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	if model.TotalSteps() != 4 {
		t.Fatalf("steps = %d, want 4", model.TotalSteps())
	}

	ctrl, err := formflow.NewWorkflow(model)
	if err != nil {
		t.Fatalf("new workflow: %v", err)
	}
	if ctrl.Phase() != workflow.PhaseEditing {
		t.Fatalf("phase = %s", ctrl.Phase())
	}
}

func TestSourceFromLocation(t *testing.T) {
	t.Parallel()

	src, err := formflow.SourceFromLocation("https://example.com/form.yaml")
	if err != nil {
		t.Fatalf("url source: %v", err)
	}
	if src.Kind() != schema.SourceKindURL {
		t.Fatalf("kind = %s, want url", src.Kind())
	}
	src, err = formflow.SourceFromLocation("forms/onboarding.yaml")
	if err != nil {
		t.Fatalf("file source: %v", err)
	}
	if src.Kind() != schema.SourceKindFile {
		t.Fatalf("kind = %s, want file", src.Kind())
	}
}

func TestSourceFromLocation_MalformedURL(t *testing.T) {
	t.Parallel()

	src, err := formflow.SourceFromLocation("http://exa mple.com/form.yaml")
	if !errors.Is(err, schema.ErrInvalidSource) {
		t.Fatalf("err = %v, want ErrInvalidSource", err)
	}
	if src != nil {
		t.Fatalf("source = %v, want nil", src)
	}
}

type quitDriver struct{}

func (quitDriver) Input(context.Context, tui.InputConfig) (string, error) { return "", tui.ErrAborted }
func (quitDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, tui.ErrAborted
}
func (quitDriver) Select(context.Context, tui.SelectConfig) (int, error) { return 0, tui.ErrAborted }
func (quitDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	return "", tui.ErrAborted
}
func (quitDriver) Info(context.Context, string) error { return nil }

func TestRunTerminal_Aborted(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	session, state, err := formflow.RunTerminal(context.Background(), model, nil, tui.WithPromptDriver(quitDriver{}))
	if !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
	if session == nil || state.Phase != workflow.PhaseEditing {
		t.Fatalf("session = %v, state = %+v", session, state)
	}
}
