package llm

import (
	"context"
	"errors"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/schema"
)

const (
	defaultModel = "claude-3-sonnet-20240229"
	maxTokens    = 1000
)

type AnthropicClient struct {
	llm *anthropic.LLM
}

func NewAnthropicClient() (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is missing")
	}

	model := os.Getenv("CLAUDE_MODEL")
	if model == "" {
		model = defaultModel
	}

	l, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &AnthropicClient{llm: l}, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, system string, prompt string) (string, error) {
	messages := []llms.MessageContent{}
	if system != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no completion")
	}
	return resp.Choices[0].Content, nil
}
