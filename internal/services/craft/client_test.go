package craft_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paperflow/internal/services/craft"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *craft.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return craft.NewClient(craft.Config{
		BaseURL:      server.URL,
		APIToken:     "token",
		CollectionID: "col-1",
		TemplateID:   "tmpl-1",
	})
}

func TestCreateEntryReturnsID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections/col-1/items" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("missing auth header: %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"id":"item-42"}`))
	})

	id, err := client.CreateEntry(context.Background(), craft.EntryDraft{
		Title:   "Sparse Attention at Scale",
		Link:    "https://arxiv.org/abs/2401.12345",
		Summary: "short summary",
		Tags:    []string{"ml"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if id != "item-42" {
		t.Fatalf("unexpected id: %q", id)
	}
}

func TestCreateEntryRequiresTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := client.CreateEntry(context.Background(), craft.EntryDraft{}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestUpdateEntrySendsPatch(t *testing.T) {
	var patched bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		patched = true
		if r.Method != http.MethodPatch || r.URL.Path != "/collections/col-1/items/item-42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Fields["deep_read"] != true {
			t.Errorf("expected deep_read flag, got %v", body.Fields)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := client.UpdateEntry(context.Background(), "item-42", craft.EntryUpdate{
		IsDeepRead:  true,
		DetailDocID: "doc-7",
		Comment:     "worth a full read",
	})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if !patched {
		t.Fatal("expected PATCH request")
	}
}

func TestCreateDetailDocumentRendersMarkdown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Markdown   string `json:"markdown"`
			TemplateID string `json:"templateId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if !strings.Contains(body.Markdown, "## Innovations") {
			t.Errorf("expected innovations section, got %q", body.Markdown)
		}
		if body.TemplateID != "tmpl-1" {
			t.Errorf("expected template id, got %q", body.TemplateID)
		}
		w.Write([]byte(`{"id":"doc-7"}`))
	})

	id, err := client.CreateDetailDocument(context.Background(), craft.DetailDraft{
		Title:       "Sparse Attention at Scale",
		Overview:    "Long overview.",
		Innovations: []string{"sparsity schedule"},
		Directions:  []string{"scale further"},
	})
	if err != nil {
		t.Fatalf("CreateDetailDocument: %v", err)
	}
	if id != "doc-7" {
		t.Fatalf("unexpected id: %q", id)
	}
}

func TestErrorsSurfaceStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("bad token"))
	})
	_, err := client.CreateEntry(context.Background(), craft.EntryDraft{Title: "T"})
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "bad token") {
		t.Fatalf("expected status error, got %v", err)
	}
}
