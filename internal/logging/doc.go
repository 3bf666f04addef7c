// Package logging wires slog with the handlers and attribute helpers used
// across the daemon and CLI. Console output gets a compact single-line
// format; file and JSON output keep machine-readable structure.
package logging
