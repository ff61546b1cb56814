// Package visibility decides which fields of a step are relevant. A field with
// a visibility rule is visible only while the field it depends on holds the
// rule's literal exactly. Results are never cached: callers re-evaluate after
// every value change.
package visibility
