package paper_test

import (
	"testing"

	"paperflow/internal/paper"
)

func TestRunKeyIsStable(t *testing.T) {
	a := paper.RunKey("https://arxiv.org/abs/2401.00001")
	b := paper.RunKey("https://arxiv.org/abs/2401.00001")
	if a != b {
		t.Fatalf("expected identical keys, got %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 character key, got %q", a)
	}
	if a == paper.RunKey("https://arxiv.org/abs/2401.00002") {
		t.Fatal("expected distinct URLs to map to distinct keys")
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	if _, err := paper.ParseStatus("triaging"); err != nil {
		t.Fatalf("expected triaging to parse: %v", err)
	}
	if _, err := paper.ParseStatus("reviewing"); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, status := range paper.AllStatuses() {
		terminal := status == paper.StatusCompleted || status == paper.StatusFailed
		if status.IsTerminal() != terminal {
			t.Fatalf("IsTerminal mismatch for %s", status)
		}
	}
}

func TestCoerceDecision(t *testing.T) {
	cases := map[string]paper.Decision{
		"deep_read":     paper.DecisionDeepRead,
		"Deep-Read":     paper.DecisionDeepRead,
		"drop":          paper.DecisionDrop,
		"skim":          paper.DecisionSkim,
		"backlog":       paper.DecisionSkim,
		"unknown_value": paper.DecisionSkim,
		"":              paper.DecisionSkim,
	}
	for input, want := range cases {
		if got := paper.CoerceDecision(input); got != want {
			t.Fatalf("CoerceDecision(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	run := paper.NewRun("https://arxiv.org/abs/2401.00001", paper.SourceArxiv)
	run.TriageTags = []string{"ml"}
	clone := run.Clone()
	clone.TriageTags[0] = "systems"
	if run.TriageTags[0] != "ml" {
		t.Fatal("expected clone to copy slices")
	}
}
