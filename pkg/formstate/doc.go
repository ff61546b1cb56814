// Package formstate stores the values and validation errors of a running form.
package formstate
