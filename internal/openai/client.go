package openai

import (
	"context"
	"errors"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client generates text through an OpenAI-compatible chat completions API.
type Client struct {
	client oai.Client
	model  string
}

// NewClient creates a chat completions client. baseURL may point at any
// OpenAI-compatible endpoint; empty uses the public API.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if model == "" {
		return nil, errors.New("openai model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{client: oai.NewClient(opts...), model: model}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: oai.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Name() string {
	return "openai:" + c.model
}
