package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Client generates text with Google's Gemini API.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewClient creates a Gemini text client. baseURL is only set in tests.
func NewClient(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-pro"
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model, temperature: 0.4}, nil
}

// Generate sends prompt as a single user turn and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(c.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

// responseText extracts the text of the first candidate, reporting prompt
// and candidate safety blocks the way the API names them.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("gemini: nil response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("gemini: response blocked: SAFETY")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response text")
	}
	return text, nil
}

// Name returns the engine name.
func (c *Client) Name() string {
	return fmt.Sprintf("gemini:%s", c.model)
}
