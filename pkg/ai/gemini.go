package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultGeminiModel is used when no generation model is configured.
	DefaultGeminiModel = "gemini-flash-latest"
)

// Gemini generates text with the Google AI Studio generateContent API.
type Gemini struct {
	api   endpoint
	model string
}

// NewGemini builds a Gemini generator. An empty baseURL means the public API;
// model may carry the "models/" prefix.
func NewGemini(apiKey, model, baseURL string) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiBaseURL
	}
	api := newEndpoint("gemini", baseURL, nestedMessage)
	api.header.Set("x-goog-api-key", apiKey)

	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{api: api, model: model}, nil
}

// GenerateText returns the text parts of the first candidate joined together.
func (g *Gemini) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	in := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: userPrompt}}}},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		in.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	var out geminiResponse
	if err := g.api.post(ctx, "/models/"+g.model+":generateContent", in, &out); err != nil {
		return "", err
	}

	if len(out.Candidates) == 0 {
		if reason := out.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("gemini blocked prompt: %s", reason)
		}
		return "", errors.New("gemini returned no candidates")
	}
	first := out.Candidates[0]
	var text strings.Builder
	for _, p := range first.Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text (finish reason %s)", first.FinishReason)
	}
	return text.String(), nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}
