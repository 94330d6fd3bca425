package config

// LLMConfig configures the model transport.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // empty = provider default
	Timeout  string `yaml:"timeout"`

	// Temperature is sent only when set; nil leaves the provider default.
	Temperature *float32 `yaml:"temperature,omitempty"`

	// StructuredOutput asks Gemini for application/json with the
	// GenerationResult schema instead of relying on prompt instructions alone.
	StructuredOutput bool `yaml:"structured_output"`
}

// HasAPIKey reports whether a credential is configured.
func (c LLMConfig) HasAPIKey() bool {
	return c.APIKey != ""
}
