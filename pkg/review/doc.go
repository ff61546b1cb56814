// Package review builds the confirmation summary shown before a form is
// submitted. Only visible fields are listed. Empty values read "Not provided"
// and checkboxes read "Yes" or "No".
package review
