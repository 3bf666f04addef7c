// Command paperflow is the CLI for the paper processing daemon: it
// serves the daemon, submits papers, answers pending decisions, and
// inspects run state.
package main
