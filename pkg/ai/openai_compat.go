package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompat generates text with any /chat/completions API: vLLM, LiteLLM,
// OpenRouter and the like. baseURL includes the /v1 prefix.
type OpenAICompat struct {
	client *openai.Client
	model  string
}

// NewOpenAICompat builds the generator; apiKey may be empty for local
// deployments.
func NewOpenAICompat(baseURL, apiKey, model string) *OpenAICompat {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	return &OpenAICompat{client: openai.NewClientWithConfig(cfg), model: strings.TrimSpace(model)}
}

func (o *OpenAICompat) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if o.model == "" {
		return "", errors.New("openai-compat generation model required")
	}
	var messages []openai.ChatCompletionMessage
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userPrompt})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai-compat request: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("openai-compat returned no text")
	}
	return resp.Choices[0].Message.Content, nil
}
