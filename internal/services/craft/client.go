package craft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Config captures the runtime settings required to talk to the archive.
type Config struct {
	BaseURL        string
	APIToken       string
	CollectionID   string
	TemplateID     string
	FolderID       string
	TimeoutSeconds int
}

// Client wraps the Craft connect API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an archive client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIToken:       strings.TrimSpace(cfg.APIToken),
			CollectionID:   strings.TrimSpace(cfg.CollectionID),
			TemplateID:     strings.TrimSpace(cfg.TemplateID),
			FolderID:       strings.TrimSpace(cfg.FolderID),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// EntryDraft describes a new collection entry.
type EntryDraft struct {
	Title   string
	Link    string
	Summary string
	Tags    []string
}

// EntryUpdate carries the final decision fields written back to an entry.
type EntryUpdate struct {
	IsDeepRead  bool
	DetailDocID string
	Comment     string
	Tags        []string
	Title       string
}

// DetailDraft describes a deep-read document.
type DetailDraft struct {
	Title       string
	Overview    string
	Innovations []string
	Directions  []string
}

// CreateEntry adds a collection entry for a paper and returns its identifier.
func (c *Client) CreateEntry(ctx context.Context, draft EntryDraft) (string, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return "", errors.New("archive create entry: title required")
	}
	body := map[string]any{
		"collectionId": c.cfg.CollectionID,
		"fields": map[string]any{
			"title":   draft.Title,
			"link":    draft.Link,
			"summary": draft.Summary,
			"tags":    draft.Tags,
			"status":  "triaged",
		},
	}
	var response struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/collections/"+c.cfg.CollectionID+"/items", body, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", errors.New("archive create entry: response missing id")
	}
	return response.ID, nil
}

// UpdateEntry writes the final decision fields onto an existing entry.
func (c *Client) UpdateEntry(ctx context.Context, entryID string, update EntryUpdate) error {
	if strings.TrimSpace(entryID) == "" {
		return errors.New("archive update entry: entry id required")
	}
	fields := map[string]any{
		"status": "done",
	}
	if update.Title != "" {
		fields["title"] = update.Title
	}
	if update.Comment != "" {
		fields["comment"] = update.Comment
	}
	if len(update.Tags) > 0 {
		fields["tags"] = update.Tags
	}
	if update.IsDeepRead {
		fields["deep_read"] = true
	}
	if update.DetailDocID != "" {
		fields["detail_doc"] = update.DetailDocID
	}
	body := map[string]any{"fields": fields}
	return c.patch(ctx, "/collections/"+c.cfg.CollectionID+"/items/"+entryID, body)
}

// CreateDetailDocument materializes the deep-read report as a document and
// returns its identifier.
func (c *Client) CreateDetailDocument(ctx context.Context, draft DetailDraft) (string, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return "", errors.New("archive create document: title required")
	}
	var content strings.Builder
	fmt.Fprintf(&content, "# %s\n\n## Overview\n\n%s\n", draft.Title, draft.Overview)
	if len(draft.Innovations) > 0 {
		content.WriteString("\n## Innovations\n\n")
		for _, item := range draft.Innovations {
			fmt.Fprintf(&content, "- %s\n", item)
		}
	}
	if len(draft.Directions) > 0 {
		content.WriteString("\n## Directions\n\n")
		for _, item := range draft.Directions {
			fmt.Fprintf(&content, "- %s\n", item)
		}
	}

	body := map[string]any{
		"title":    draft.Title,
		"markdown": content.String(),
	}
	if c.cfg.TemplateID != "" {
		body["templateId"] = c.cfg.TemplateID
	}
	if c.cfg.FolderID != "" {
		body["folderId"] = c.cfg.FolderID
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/documents", body, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", errors.New("archive create document: response missing id")
	}
	return response.ID, nil
}

// HealthCheck verifies the archive endpoint answers authenticated requests.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/collections/"+c.cfg.CollectionID, nil)
	if err != nil {
		return err
	}
	c.decorate(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("archive health: http %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body any) error {
	return c.send(ctx, http.MethodPatch, path, body, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("archive request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("archive request: new request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("archive request: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("archive request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("archive request: %s %s: http %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("archive request: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
}
