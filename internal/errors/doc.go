// Package apperrors holds the exit codes and typed errors shared by the
// fizzfib front ends (CLI, REPL, TUI and HTTP server).
//
// Errors wrap their cause with %w so errors.Is and errors.As keep working
// across package boundaries.
package apperrors
