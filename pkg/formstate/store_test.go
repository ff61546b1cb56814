package formstate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func TestNew_SeedsDefaults(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	store := formstate.New(model)

	if diff := cmp.Diff(model.Defaults(), store.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if got := store.Errors(); len(got) != 0 {
		t.Fatalf("expected no errors, got %v", got)
	}
}

func TestWithValues_IgnoresUnknownNames(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	store := formstate.New(model, formstate.WithValues(schema.FormValues{"firstName": "Ada", "ghost": "x"}))

	if v, _ := store.Value("firstName"); v != "Ada" {
		t.Fatalf("firstName = %#v, want Ada", v)
	}
	if _, ok := store.Value("ghost"); ok {
		t.Fatalf("unknown name must not be seeded")
	}
}

func TestSetField_ClearsOnlyItsError(t *testing.T) {
	t.Parallel()

	store := formstate.New(testsupport.OnboardingModel(t))
	store.ReplaceErrors(validation.Errors{
		"firstName": validation.MessageRequired,
		"lastName":  validation.MessageRequired,
	})

	store.SetField("firstName", "Ada")

	want := validation.Errors{"lastName": validation.MessageRequired}
	if diff := cmp.Diff(want, store.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if v, _ := store.Value("firstName"); v != "Ada" {
		t.Fatalf("firstName = %#v", v)
	}
}

func TestReplaceErrors_IsWholesale(t *testing.T) {
	t.Parallel()

	store := formstate.New(testsupport.OnboardingModel(t))
	store.ReplaceErrors(validation.Errors{"age": "Minimum value is 18"})
	store.ReplaceErrors(validation.Errors{"phone": validation.MessageInvalidFormat})

	if diff := cmp.Diff(validation.Errors{"phone": validation.MessageInvalidFormat}, store.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	store.ReplaceErrors(nil)
	if got := store.Errors(); len(got) != 0 {
		t.Fatalf("nil replace should clear errors, got %v", got)
	}
}

func TestVisibleFields_FollowValues(t *testing.T) {
	t.Parallel()

	store := formstate.New(testsupport.OnboardingModel(t))
	names := func() []string {
		var out []string
		for _, f := range store.VisibleFields(2) {
			out = append(out, f.Name)
		}
		return out
	}

	if diff := cmp.Diff([]string{"position", "experience", "hasLaptop"}, names()); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}
	store.SetField("hasLaptop", "Yes")
	if diff := cmp.Diff([]string{"position", "experience", "hasLaptop", "laptopModel"}, names()); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}
	if got := store.VisibleFields(9); got != nil {
		t.Fatalf("out of range step should yield nil, got %v", got)
	}
}

func TestAccessors_ReturnCopies(t *testing.T) {
	t.Parallel()

	store := formstate.New(testsupport.OnboardingModel(t))
	store.ReplaceErrors(validation.Errors{"age": "x"})

	values := store.Values()
	values["firstName"] = "mutated"
	errs := store.Errors()
	errs["age"] = "mutated"

	if v, _ := store.Value("firstName"); v != "" {
		t.Fatalf("Values leaked internal map")
	}
	if msg, _ := store.ErrorFor("age"); msg != "x" {
		t.Fatalf("Errors leaked internal map")
	}
}
