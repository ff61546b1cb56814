// Package workflow moves a form through its steps, the review and the final
// submission.
//
// A Controller owns the values of one run. Presentation layers call SetField
// as the user types and Next, Previous, Submit, Confirm or Cancel on user
// actions. Every call returns the resulting State. Requests the current
// phase does not allow fail with an error matching ErrInvalidTransition and
// leave the state unchanged. The phase machine is:
//
//	editing --submit--> review_pending --confirm--> submitted
//	   ^                     |
//	   +-------cancel--------+
//
// Next and Previous move between steps while editing.
package workflow
