// Package submission delivers completed forms to their destination. The
// workflow calls a Submitter once the user confirms the review.
package submission
