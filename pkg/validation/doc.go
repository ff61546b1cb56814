// Package validation computes per-field violations for the visible fields of a
// step. Each field reports at most one message, from the first failing rule in
// this order: required, pattern, numeric (not a number, min, max), maxLength.
package validation
