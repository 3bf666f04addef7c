// Package llm talks to an OpenRouter-compatible chat completion API and
// exposes the two analysis calls the pipeline needs: triage and the deep
// read. Responses are JSON-only; transient HTTP failures retry with
// exponential backoff honoring Retry-After.
package llm
