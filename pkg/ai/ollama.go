package ai

import (
	"context"
	"errors"
	"strings"
)

const defaultOllamaBaseURL = "http://127.0.0.1:11434"

// Ollama generates text with a local Ollama server's /api/chat.
type Ollama struct {
	api   endpoint
	model string
}

func NewOllama(baseURL, model string) *Ollama {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &Ollama{api: newEndpoint("ollama", baseURL, flatMessage), model: strings.TrimSpace(model)}
}

func (o *Ollama) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if o.model == "" {
		return "", errors.New("ollama generation model required")
	}
	var out struct {
		Message chatMessage `json:"message"`
	}
	in := ollamaRequest{Model: o.model, Messages: chatMessages(systemPrompt, userPrompt)}
	if err := o.api.post(ctx, "/api/chat", in, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", errors.New("ollama returned no text")
	}
	return out.Message.Content, nil
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}
