// Package widgets resolves the presentation widget for each schema field.
// Adapters use the names to pick an input control; the workflow never looks
// at them.
package widgets
