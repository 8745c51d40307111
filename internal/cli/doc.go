// Package cli renders the terminal front end: the progress spinner, result
// and comparison output, the interactive REPL and shell completion scripts.
//
// Display* functions write to an io.Writer, Format* functions return a
// string, Write* functions write files.
package cli
