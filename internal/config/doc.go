// Package config loads and validates the TOML configuration used by the
// daemon and CLI. Values merge over repository defaults, paths expand ~ to
// the user home directory, and secrets may come from environment variables.
package config
