// Package api defines the JSON payloads shared by the daemon's HTTP
// surface and the CLI, plus the read-side run service both consume.
package api
