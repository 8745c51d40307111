// Package format renders durations, progress and large numbers for the
// terminal front ends.
package format
