package review_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/review"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func onboardingValues() schema.FormValues {
	values := schema.FormValues{}
	for _, step := range testsupport.OnboardingStepValues() {
		for k, v := range step {
			values[k] = v
		}
	}
	return values
}

func TestBuild_VisibleFieldsAndPlaceholders(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	values := onboardingValues()
	values["hasLaptop"] = "No"
	values["gender"] = ""

	summary := review.Build(model, values, nil)

	var got []string
	for _, it := range summary.Items() {
		got = append(got, it.Name+"="+it.Value)
	}
	want := []string{
		"firstName=Ada",
		"lastName=Lovelace",
		"age=36",
		"gender=Not provided",
		"email=ada@example.com",
		"phone=+94771234567",
		"address=12 Analytical Row",
		"position=Developer",
		"experience=10",
		"hasLaptop=No",
		"confirm=Yes",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary items mismatch (-want +got):\n%s", diff)
	}
	if len(summary.Sections) != 4 || summary.Sections[3].Label != "Confirmation" {
		t.Fatalf("unexpected sections %+v", summary.Sections)
	}
}

func TestBuild_UncheckedCheckboxReadsNo(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	summary := review.Build(model, model.Defaults(), nil)

	items := summary.Items()
	last := items[len(items)-1]
	if last.Name != "confirm" || last.Value != review.No || last.Empty {
		t.Fatalf("unexpected checkbox item %+v", last)
	}
}

func TestSummary_Text(t *testing.T) {
	t.Parallel()

	form := schema.FormSchema{Title: "Short", Steps: []schema.Step{
		{ID: "one", Label: "One", Fields: []schema.FieldSpec{
			{Name: "name", Label: "Name", Type: schema.FieldTypeText},
			{Name: "ok", Label: "OK", Type: schema.FieldTypeCheckbox},
		}},
	}}
	model := testsupport.MustModel(t, form)

	got := review.Build(model, schema.FormValues{"name": "", "ok": true}, nil).Text()
	want := "Short\n=====\n\nOne\n  Name: Not provided\n  OK: Yes\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLRenderer_SanitisesValues(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	values := onboardingValues()
	values["firstName"] = "<b>Ada</b><script>alert(1)</script>"

	renderer, err := review.NewHTMLRenderer(review.WithConfirmLabel("Submit this form?"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	html, err := renderer.RenderString(review.Build(model, values, nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if strings.Contains(html, "<script>") || strings.Contains(html, "<b>") {
		t.Fatalf("markup leaked into review:\n%s", html)
	}
	for _, want := range []string{
		"<h2>Employee Onboarding Form</h2>",
		`data-step="employment"`,
		"<dt>First Name</dt>\n<dd>Ada</dd>",
		"Submit this form?",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q:\n%s", want, html)
		}
	}
}

func TestHTMLRenderer_CustomTemplate(t *testing.T) {
	t.Parallel()

	renderer, err := review.NewHTMLRenderer(review.WithTemplate(`{% for s in summary.Sections %}[{{ s.StepID }}]{% endfor %}`))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	model := testsupport.OnboardingModel(t)
	got, err := renderer.RenderString(review.Build(model, model.Defaults(), nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[personal-info][contact][employment][final]" {
		t.Fatalf("unexpected output %q", got)
	}

	if _, err := review.NewHTMLRenderer(review.WithTemplate(`{% for %}`)); err == nil {
		t.Fatalf("expected parse error")
	}
}
