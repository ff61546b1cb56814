package testsupport

import (
	"context"
	"embed"
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
)

//go:embed testdata/*
var fixtures embed.FS

// OnboardingFixture is the name of the employee onboarding schema fixture.
const OnboardingFixture = "testdata/onboarding.json"

// Fixtures exposes the embedded fixture files, for loader tests that read
// through an fs.FS.
func Fixtures() embed.FS {
	return fixtures
}

// MustReadFixture returns the raw bytes of an embedded fixture.
func MustReadFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// OnboardingDocument wraps the onboarding fixture in a schema.Document.
func OnboardingDocument(t testing.TB) schema.Document {
	t.Helper()

	doc, err := schema.NewDocument(schema.SourceFromFS(OnboardingFixture), MustReadFixture(t, OnboardingFixture))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

// OnboardingModel parses the onboarding fixture into a validated model.
func OnboardingModel(t testing.TB) *schema.Model {
	t.Helper()

	model, err := schema.Parse(OnboardingDocument(t))
	if err != nil {
		t.Fatalf("parse onboarding schema: %v", err)
	}
	return model
}

// MustModel validates form and fails the test on error.
func MustModel(t testing.TB, form schema.FormSchema) *schema.Model {
	t.Helper()

	model, err := schema.New(form)
	if err != nil {
		t.Fatalf("new schema model: %v", err)
	}
	return model
}

// OnboardingStepValues returns values that satisfy each onboarding step,
// indexed by step. Apply them in order to walk the workflow to review.
func OnboardingStepValues() []schema.FormValues {
	return []schema.FormValues{
		{"firstName": "Ada", "lastName": "Lovelace", "age": "36", "gender": "Female"},
		{"email": "ada@example.com", "phone": "+94771234567", "address": "12 Analytical Row"},
		{"position": "Developer", "experience": "10", "hasLaptop": "Yes", "laptopModel": "ThinkPad X1 Carbon"},
		{"confirm": true},
	}
}

// Float returns a pointer to v, for constraint literals.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for constraint literals.
func Int(v int) *int {
	return &v
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
