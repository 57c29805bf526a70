// Package ui holds the terminal styling shared by the CLI commands.
//
// Output is plain text with [lipgloss] colors; lipgloss drops the escape codes when stdout is not a terminal,
// so piped output stays clean.
package ui
