package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paperflow/internal/config"
)

func TestLoadDefaultConfigUsesEnvSecretsAndExpandsPaths(t *testing.T) {
	t.Setenv("PAPERFLOW_LLM_API_KEY", "test-key")
	t.Setenv("PAPERFLOW_ARCHIVE_TOKEN", "archive-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(configPath, []byte("[archive]\nbase_url = \"https://connect.example.com/\"\ncollection_id = \"col-1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "paperflow")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7387" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Archive.APIToken != "archive-token" {
		t.Fatalf("expected archive token from env, got %q", cfg.Archive.APIToken)
	}
	if cfg.Archive.BaseURL != "https://connect.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Archive.BaseURL)
	}
	if cfg.Feishu.Enabled {
		t.Fatal("expected Feishu disabled by default")
	}
	if cfg.Workflow.AdvanceTimeoutSeconds != config.Default().Workflow.AdvanceTimeoutSeconds {
		t.Fatalf("unexpected advance timeout: %d", cfg.Workflow.AdvanceTimeoutSeconds)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "paperflow.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadMissingLLMKeyFails(t *testing.T) {
	t.Setenv("PAPERFLOW_LLM_API_KEY", "")
	os.Unsetenv("PAPERFLOW_LLM_API_KEY")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(configPath, []byte("[archive]\nbase_url = \"https://connect.example.com\"\ncollection_id = \"col-1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected error for missing llm.api_key")
	}
	if !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsInvalidLoggingFormat(t *testing.T) {
	t.Setenv("PAPERFLOW_LLM_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	body := "[archive]\nbase_url = \"https://connect.example.com\"\ncollection_id = \"col-1\"\n[logging]\nformat = \"xml\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	tempHome := t.TempDir()
	path := filepath.Join(tempHome, "config.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[workflow]") {
		t.Fatal("sample config missing workflow section")
	}

	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}
