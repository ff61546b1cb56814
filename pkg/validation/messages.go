package validation

import (
	"fmt"
	"strconv"
)

// Rule identifies which constraint produced a violation.
type Rule string

const (
	RuleRequired  Rule = "required"
	RulePattern   Rule = "pattern"
	RuleNumber    Rule = "number"
	RuleMin       Rule = "min"
	RuleMax       Rule = "max"
	RuleMaxLength Rule = "maxLength"
)

const (
	MessageRequired      = "This field is required"
	MessageInvalidFormat = "Invalid format"
	MessageNotANumber    = "Must be a number"
)

// MinimumMessage formats the violation for a value below min.
func MinimumMessage(min float64) string {
	return "Minimum value is " + formatNumber(min)
}

// MaximumMessage formats the violation for a value above max.
func MaximumMessage(max float64) string {
	return "Maximum value is " + formatNumber(max)
}

// MaxLengthMessage formats the violation for a value longer than limit.
func MaxLengthMessage(limit int) string {
	return fmt.Sprintf("Maximum length is %d characters", limit)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
