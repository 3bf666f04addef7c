package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL     = "https://open.feishu.cn/open-apis"
	defaultHTTPTimeout = 15 * time.Second
	tokenSafetyMargin  = 5 * time.Minute
)

// Config captures the runtime settings for the Feishu bot.
type Config struct {
	AppID             string
	AppSecret         string
	VerificationToken string
	TimeoutSeconds    int
}

// Client talks to the Feishu open API as a tenant bot.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
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

// WithBaseURL overrides the Feishu API host (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// NewClient constructs a Feishu client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// VerifyToken reports whether a webhook payload carries the configured
// verification token. An empty configured token accepts everything.
func (c *Client) VerifyToken(token string) bool {
	if c.cfg.VerificationToken == "" {
		return true
	}
	return token == c.cfg.VerificationToken
}

// tenantToken returns a cached tenant access token, refreshing when close
// to expiry.
func (c *Client) tenantToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     c.cfg.AppID,
		"app_secret": c.cfg.AppSecret,
	})
	if err != nil {
		return "", fmt.Errorf("feishu token: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v3/tenant_access_token/internal", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("feishu token: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("feishu token: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("feishu token: decode response: %w", err)
	}
	if parsed.Code != 0 || parsed.TenantAccessToken == "" {
		return "", fmt.Errorf("feishu token: api error %d: %s", parsed.Code, parsed.Msg)
	}

	c.token = parsed.TenantAccessToken
	expiry := time.Duration(parsed.Expire) * time.Second
	if expiry > tokenSafetyMargin {
		expiry -= tokenSafetyMargin
	}
	c.tokenExpiry = time.Now().Add(expiry)
	return c.token, nil
}

// SendText posts a plain text message to a chat or user.
func (c *Client) SendText(ctx context.Context, receiveID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("feishu send: encode content: %w", err)
	}
	return c.sendMessage(ctx, receiveID, "text", string(content))
}

// SendCard posts an interactive card to a chat or user. The card value is
// marshaled into the double-encoded content Feishu expects.
func (c *Client) SendCard(ctx context.Context, receiveID string, card any) error {
	content, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("feishu send: encode card: %w", err)
	}
	return c.sendMessage(ctx, receiveID, "interactive", string(content))
}

func (c *Client) sendMessage(ctx context.Context, receiveID, msgType, content string) error {
	if strings.TrimSpace(receiveID) == "" {
		return errors.New("feishu send: receive id required")
	}
	token, err := c.tenantToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"receive_id": receiveID,
		"msg_type":   msgType,
		"content":    content,
	})
	if err != nil {
		return fmt.Errorf("feishu send: encode body: %w", err)
	}

	endpoint := c.baseURL + "/im/v1/messages?receive_id_type=" + receiveIDType(receiveID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu send: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feishu send: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return fmt.Errorf("feishu send: decode response: %w", err)
	}
	if parsed.Code != 0 {
		return fmt.Errorf("feishu send: api error %d: %s", parsed.Code, parsed.Msg)
	}
	return nil
}

// Chat ids start with oc_, user open ids with ou_.
func receiveIDType(receiveID string) string {
	if strings.HasPrefix(receiveID, "oc_") {
		return "chat_id"
	}
	return "open_id"
}
