package services_test

import (
	"errors"
	"strings"
	"testing"

	"paperflow/internal/services"
)

func TestWrapTagsAndDescribes(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrExternal, "ingest", "resolve", "resolve source metadata", cause)

	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected ErrExternal marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	for _, fragment := range []string{"ingest", "resolve", "connection refused"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "triage", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient default, got %v", err)
	}
}

func TestIsAnticipated(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrValidation, "extract", "", "missing locator", nil), true},
		{services.Wrap(services.ErrExternal, "deep-read", "analyze", "", errors.New("500")), true},
		{errors.New("disk corrupt"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := services.IsAnticipated(tc.err); got != tc.want {
			t.Fatalf("IsAnticipated(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
