// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"paperflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.LLM.APIKey = "test"
	cfg.Archive.BaseURL = "https://archive.test"
	cfg.Archive.CollectionID = "collection-test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithArchive overrides the archive endpoint on the test config.
func WithArchive(baseURL, collectionID string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Archive.BaseURL = baseURL
		cfg.Archive.CollectionID = collectionID
	}
}

// WithFeishu enables the Feishu integration on the test config.
func WithFeishu(appID, appSecret, token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Feishu.Enabled = true
		cfg.Feishu.AppID = appID
		cfg.Feishu.AppSecret = appSecret
		cfg.Feishu.VerificationToken = token
	}
}
