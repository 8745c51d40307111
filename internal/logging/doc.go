// Package logging provides the structured logging interface used across
// fizzfib. Components depend on Logger; the default backend is zerolog
// writing human-readable console lines to stderr.
package logging
