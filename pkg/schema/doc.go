// Package schema holds the declarative form schema: steps, fields, their
// constraints and visibility rules. New validates a FormSchema once and returns
// an immutable Model with lookups used by the visibility, validation and
// workflow packages. Parse and Decode read JSON or YAML documents in the
// layout of the reference onboarding form (flat constraints, visibleIf).
package schema
