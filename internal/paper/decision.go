package paper

import "strings"

// Decision is the human (or suggested) handling action for a paper.
type Decision string

const (
	DecisionDeepRead Decision = "deep_read"
	DecisionSkim     Decision = "skim"
	DecisionDrop     Decision = "drop"
)

// CoerceDecision maps an external decision string onto the closed decision
// set. Unrecognized values fall back to skim so a malformed upstream
// response degrades to the light pass instead of failing the run.
func CoerceDecision(value string) Decision {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "deep_read", "deepread", "deep-read":
		return DecisionDeepRead
	case "drop", "discard":
		return DecisionDrop
	case "skim":
		return DecisionSkim
	case "backlog": // older card payloads used backlog for the light pass
		return DecisionSkim
	default:
		return DecisionSkim
	}
}
