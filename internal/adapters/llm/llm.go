// Package llm wraps langchaingo behind a small completion client so services
// can swap providers through configuration alone
package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"sleuth/internal/platform/config"
	"sleuth/internal/platform/errors"
)

// Supported providers
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Client wraps a langchaingo model for text generation
type Client struct {
	llm       llms.Model
	modelName string
}

// New creates a completion client from a config view.
// Expected keys: PROVIDER, MODEL, plus OLLAMA_HOST or API_KEY per provider
func New(cfg config.Conf) (*Client, error) {
	provider := cfg.MayEnum("PROVIDER", ProviderOllama, ProviderOllama, ProviderOpenAI, ProviderAnthropic)
	modelName := cfg.MayString("MODEL", "llama3")

	var (
		model llms.Model
		err   error
	)

	switch provider {
	case ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(modelName),
			ollama.WithServerURL(cfg.MayString("OLLAMA_HOST", "http://localhost:11434")),
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorCodeUnavailable, "create ollama model")
		}

	case ProviderOpenAI:
		key := cfg.MayString("API_KEY", "")
		if key == "" {
			return nil, errors.InvalidArgf("openai api key required")
		}
		model, err = openai.New(
			openai.WithToken(key),
			openai.WithModel(modelName),
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorCodeUnavailable, "create openai model")
		}

	case ProviderAnthropic:
		key := cfg.MayString("API_KEY", "")
		if key == "" {
			return nil, errors.InvalidArgf("anthropic api key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(key),
			anthropic.WithModel(modelName),
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorCodeUnavailable, "create anthropic model")
		}

	default:
		return nil, errors.InvalidArgf("unsupported llm provider: %s", provider)
	}

	return &Client{llm: model, modelName: modelName}, nil
}

// Complete generates text from a single prompt
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorCodeUnavailable, "llm generate")
	}
	return out, nil
}

// CompleteWithSystem generates text with a system prompt
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorCodeUnavailable, "llm generate")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Unavailablef("llm returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// Model returns the configured model name
func (c *Client) Model() string { return c.modelName }
