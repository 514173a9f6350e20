package config

import "time"

// Config is the top-level basicbook configuration.
type Config struct {
	// Provider selects the analysis backend: "gemini" or "openai".
	Provider string `mapstructure:"provider" yaml:"provider"`

	Gemini   GeminiConfig   `mapstructure:"gemini" yaml:"gemini"`
	OpenAI   OpenAIConfig   `mapstructure:"openai" yaml:"openai"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
}

// GeminiConfig configures the Gemini analysis client.
type GeminiConfig struct {
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	Model        string        `mapstructure:"model" yaml:"model"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OpenAIConfig configures the OpenAI analysis client.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DownloadConfig configures the page image source.
type DownloadConfig struct {
	// BaseURL plus a page number plus Extension forms a page image URL.
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	Extension string `mapstructure:"extension" yaml:"extension"`

	// Pause is the fixed delay between successive downloads, applied to
	// respect the origin server. It does not apply to analysis calls.
	Pause time.Duration `mapstructure:"pause" yaml:"pause"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			APIKey:       "${GEMINI_API_KEY}",
			BaseURL:      "https://generativelanguage.googleapis.com",
			Model:        "gemini-2.5-flash",
			PollInterval: time.Second,
			Timeout:      300 * time.Second,
		},
		OpenAI: OpenAIConfig{
			APIKey:  "${OPENAI_API_KEY}",
			Model:   "gpt-4o",
			Timeout: 300 * time.Second,
		},
		Download: DownloadConfig{
			BaseURL:   "https://www.atariarchives.org/basicgames/pages/page",
			Extension: ".gif",
			Pause:     250 * time.Millisecond,
		},
	}
}
