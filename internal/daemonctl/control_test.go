package daemonctl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"paperflow/internal/api"
)

func TestClientRoundTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/trigger":
			var req api.TriggerRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode trigger request: %v", err)
			}
			if req.SourceURL != "https://arxiv.org/abs/2401.12345" {
				t.Errorf("unexpected source url %q", req.SourceURL)
			}
			json.NewEncoder(w).Encode(api.OutcomeResponse{
				State: "suspended",
				Run:   api.RunSummary{Key: "abc123", Status: "waiting_decision"},
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/status/"):
			json.NewEncoder(w).Encode(api.RunSummary{Key: "abc123", Status: "completed"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/runs":
			if got := r.URL.Query().Get("status"); got != "failed" {
				t.Errorf("unexpected status filter %q", got)
			}
			json.NewEncoder(w).Encode(api.RunListResponse{Runs: []api.RunSummary{{Key: "abc123"}}})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "run not found"})
		}
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	outcome, err := client.Trigger(ctx, "https://arxiv.org/abs/2401.12345", "")
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if outcome.Run.Key != "abc123" || outcome.State != "suspended" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	run, err := client.Status(ctx, "abc123")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if run.Status != "completed" {
		t.Fatalf("unexpected status %q", run.Status)
	}

	runs, err := client.Runs(ctx, "failed")
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}

	if _, err := client.Resume(ctx, api.ResumeRequest{RunKey: "zzz", Decision: "skim"}); err == nil {
		t.Fatal("expected error from 404 response")
	} else if !strings.Contains(err.Error(), "run not found") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}

func TestWaitReady(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// The first poll lands before the daemon is up.
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "starting"})
			return
		}
		json.NewEncoder(w).Encode(api.HealthResponse{Running: true, PID: 42})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.WaitReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if calls.Load() < 2 {
		t.Fatalf("expected at least two health polls, got %d", calls.Load())
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	client, err := New("127.0.0.1:1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = client.WaitReady(context.Background(), 300*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "daemon not ready") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientAddressParsing(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty address")
	}
	client, err := New("127.0.0.1:7387")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.baseURL != "http://127.0.0.1:7387" {
		t.Fatalf("unexpected base url %q", client.baseURL)
	}
}
