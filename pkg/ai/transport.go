package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Lecture plans over a full content budget take a while.
const requestTimeout = 180 * time.Second

// endpoint is a JSON-over-HTTP completion API.
type endpoint struct {
	name    string
	baseURL string
	header  http.Header
	client  *http.Client
	// apiError pulls a provider message out of an error body.
	apiError func(body []byte) string
}

func newEndpoint(name, baseURL string, apiError func([]byte) string) endpoint {
	return endpoint{
		name:     name,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		header:   http.Header{"Content-Type": []string{"application/json"}},
		client:   &http.Client{Timeout: requestTimeout},
		apiError: apiError,
	}
}

func (e endpoint) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", e.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", e.name, err)
	}
	req.Header = e.header.Clone()

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", e.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if msg := e.apiError(body); msg != "" {
			return fmt.Errorf("%s api error: %s", e.name, msg)
		}
		return fmt.Errorf("%s api error: %s", e.name, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", e.name, err)
	}
	return nil
}

// nestedMessage reads {"error":{"message":...}}, used by Gemini.
func nestedMessage(body []byte) string {
	var v struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &v)
	return v.Error.Message
}

// flatMessage reads {"error":"..."}, used by Ollama.
func flatMessage(body []byte) string {
	var v struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &v)
	return v.Error
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func chatMessages(systemPrompt, userPrompt string) []chatMessage {
	var msgs []chatMessage
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	return append(msgs, chatMessage{Role: "user", Content: userPrompt})
}
