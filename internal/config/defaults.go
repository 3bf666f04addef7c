package config

const (
	defaultDataDir               = "~/.local/share/paperflow"
	defaultLogDir                = "~/.local/share/paperflow/logs"
	defaultAPIBind               = "127.0.0.1:7387"
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds     = 120
	defaultArchiveTimeoutSeconds = 30
	defaultFeishuTimeoutSeconds  = 15
	defaultAdvanceTimeoutSeconds = 600
	defaultResumeTimeoutSeconds  = 600
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Archive: Archive{
			TimeoutSeconds: defaultArchiveTimeoutSeconds,
		},
		Feishu: Feishu{
			TimeoutSeconds: defaultFeishuTimeoutSeconds,
		},
		Workflow: Workflow{
			AdvanceTimeoutSeconds: defaultAdvanceTimeoutSeconds,
			ResumeTimeoutSeconds:  defaultResumeTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
