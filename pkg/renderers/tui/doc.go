// Package tui runs a form workflow in the terminal using survey prompts.
package tui
