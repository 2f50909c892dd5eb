// Package llm exposes the language-model capability behind a minimal contract.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Generator is the opaque language-model capability consumed by higher layers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the completion provider settings.
type Config struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible providers
	Model   string
}

// OpenAI implements Generator over any OpenAI-compatible chat API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// Compile-time check: OpenAI implements Generator.
var _ Generator = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI-compatible completion provider.
func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Generate runs a single chat completion for the prompt.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
