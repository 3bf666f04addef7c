// Package daemon hosts the long-running paperflow process: it enforces
// single-instance execution with a lock file and serves the HTTP API
// the CLI and the Feishu webhook talk to.
package daemon
