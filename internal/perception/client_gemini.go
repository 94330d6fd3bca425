package perception

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/RUBESHR7/compass-qa/internal/logging"
)

const (
	providerGemini     = "gemini"
	defaultGeminiModel = "gemini-flash-latest"
	generateAction     = "generateContent"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey  string
	BaseURL string // empty = SDK default
	Model   string
	Timeout time.Duration

	Temperature *float32

	// ResponseSchema, when set, switches the request to structured output
	// (application/json constrained to the schema).
	ResponseSchema *genai.Schema
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:  apiKey,
		Model:   defaultGeminiModel,
		Timeout: 120 * time.Second,
	}
}

// GeminiClient implements Client for the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	gen    *genai.GenerateContentConfig
}

// NewGeminiClient creates a Gemini client. It returns ErrMissingCredential
// when cfg carries no API key; the SDK's own environment lookup is not used.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gen := &genai.GenerateContentConfig{Temperature: cfg.Temperature}
	if cfg.ResponseSchema != nil {
		gen.ResponseMIMEType = "application/json"
		gen.ResponseSchema = cfg.ResponseSchema
	}

	logging.BootDebug("gemini client ready: model=%s structured=%v timeout=%v", model, cfg.ResponseSchema != nil, cfg.Timeout)
	return &GeminiClient{client: client, model: model, gen: gen}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// Generate sends the prompt and images as a single user turn.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, 1+len(req.Images))
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.gen)
	if err != nil {
		return "", wrapGeminiError(err)
	}

	text := resp.Text()
	if text == "" && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &TransportError{
			Provider: providerGemini,
			Message:  fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
		}
	}
	return text, nil
}

// ListModels returns the models that support content generation.
func (c *GeminiClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var out []ModelInfo
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, wrapGeminiError(err)
		}
		if !slices.Contains(m.SupportedActions, generateAction) {
			continue
		}
		out = append(out, ModelInfo{
			Name:        strings.TrimPrefix(m.Name, "models/"),
			DisplayName: m.DisplayName,
			Description: m.Description,
		})
	}
	return out, nil
}

func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{
			Provider: providerGemini,
			Code:     apiErr.Code,
			Message:  apiErr.Message,
			Err:      err,
		}
	}
	return &TransportError{Provider: providerGemini, Err: err}
}
