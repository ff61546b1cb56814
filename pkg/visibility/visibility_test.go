package visibility_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

func TestIsVisible_NoRule(t *testing.T) {
	t.Parallel()

	field := schema.FieldSpec{Name: "firstName", Type: schema.FieldTypeText}
	if !visibility.IsVisible(field, nil) {
		t.Fatalf("field without a rule must be visible")
	}
}

func TestIsVisible_ExactEquality(t *testing.T) {
	t.Parallel()

	laptop := schema.FieldSpec{
		Name:           "laptopModel",
		Type:           schema.FieldTypeSelect,
		VisibilityRule: &schema.VisibilityRule{DependsOnField: "hasLaptop", EqualsValue: "Yes"},
	}
	flagged := schema.FieldSpec{
		Name:           "reason",
		Type:           schema.FieldTypeText,
		VisibilityRule: &schema.VisibilityRule{DependsOnField: "agree", EqualsValue: true},
	}

	cases := []struct {
		name   string
		field  schema.FieldSpec
		values schema.FormValues
		want   bool
	}{
		{"match", laptop, schema.FormValues{"hasLaptop": "Yes"}, true},
		{"different value", laptop, schema.FormValues{"hasLaptop": "No"}, false},
		{"case differs", laptop, schema.FormValues{"hasLaptop": "yes"}, false},
		{"untrimmed", laptop, schema.FormValues{"hasLaptop": "Yes "}, false},
		{"missing dependency", laptop, schema.FormValues{}, false},
		{"bool literal matches bool", flagged, schema.FormValues{"agree": true}, true},
		{"bool literal vs string", flagged, schema.FormValues{"agree": "true"}, false},
		{"bool literal vs false", flagged, schema.FormValues{"agree": false}, false},
		{"uncomparable value", laptop, schema.FormValues{"hasLaptop": []string{"Yes"}}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := visibility.IsVisible(tc.field, tc.values); got != tc.want {
				t.Fatalf("IsVisible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVisibleFields_RecomputedOnChange(t *testing.T) {
	t.Parallel()

	model := testsupport.OnboardingModel(t)
	step, _ := model.StepAt(2)
	values := model.Defaults()

	names := func(fields []schema.FieldSpec) []string {
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			out = append(out, f.Name)
		}
		return out
	}

	values["hasLaptop"] = "No"
	got := names(visibility.VisibleFields(step, values, nil))
	if diff := cmp.Diff([]string{"position", "experience", "hasLaptop"}, got); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}

	values["hasLaptop"] = "Yes"
	got = names(visibility.VisibleFields(step, values, visibility.Default))
	if diff := cmp.Diff([]string{"position", "experience", "hasLaptop", "laptopModel"}, got); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleFields_CustomEvaluator(t *testing.T) {
	t.Parallel()

	step := schema.Step{ID: "s", Fields: []schema.FieldSpec{
		{Name: "a", Type: schema.FieldTypeText},
		{Name: "b", Type: schema.FieldTypeText},
	}}
	hideB := visibility.EvaluatorFunc(func(field schema.FieldSpec, _ schema.FormValues) bool {
		return field.Name != "b"
	})

	got := visibility.VisibleFields(step, nil, hideB)
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("custom evaluator ignored: %v", got)
	}
}
