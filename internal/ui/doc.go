// Package ui holds the color themes shared by the CLI, the REPL and the TUI.
// CLI output uses ANSI escape strings; the TUI uses lipgloss colors derived
// from the same active theme.
package ui
