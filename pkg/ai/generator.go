package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by the stand-in generator used when no
// completion provider credentials were supplied.
var ErrNotConfigured = errors.New("completion service not configured")

// TextGenerator generates text from a system prompt and user prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Unavailable fails every call. It keeps the service bootable without an
// API key; each request then reports the missing provider.
type Unavailable struct {
	Reason string
}

func (u Unavailable) GenerateText(context.Context, string, string) (string, error) {
	if u.Reason == "" {
		return "", ErrNotConfigured
	}
	return "", fmt.Errorf("%w: %s", ErrNotConfigured, u.Reason)
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config selects and configures a completion provider.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// New builds the configured generator. A Gemini provider without an API key
// yields Unavailable rather than an error.
func New(cfg Config) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return Unavailable{Reason: "GOOGLE_API_KEY is not set"}, nil
		}
		return NewGemini(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model), nil
	case ProviderOpenAI:
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, errors.New("openai-compatible provider requires a base url")
		}
		return NewOpenAICompat(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
