package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateFeishu(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/paperflow/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set PAPERFLOW_LLM_API_KEY env var or edit %s (create with 'paperflow config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.BaseURL == "" {
		return errors.New("archive.base_url must be set")
	}
	if c.Archive.CollectionID == "" {
		return errors.New("archive.collection_id must be set")
	}
	return nil
}

func (c *Config) validateFeishu() error {
	if !c.Feishu.Enabled {
		return nil
	}
	if c.Feishu.AppID == "" {
		return errors.New("feishu.app_id must be set when feishu.enabled is true")
	}
	if c.Feishu.AppSecret == "" {
		return errors.New("feishu.app_secret must be set when feishu.enabled is true")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	for name, value := range map[string]int{
		"workflow.advance_timeout_seconds": c.Workflow.AdvanceTimeoutSeconds,
		"workflow.resume_timeout_seconds":  c.Workflow.ResumeTimeoutSeconds,
		"llm.timeout_seconds":              c.LLM.TimeoutSeconds,
		"archive.timeout_seconds":          c.Archive.TimeoutSeconds,
		"feishu.timeout_seconds":           c.Feishu.TimeoutSeconds,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
