// Package llmentities is an optional, concrete archive.EntityExtractor
// backed by an OpenRouter chat-completions call, adapted from
// pkg/batch.Service.callOpenRouter: the request/response wire shapes are
// kept, but the transport is plain net/http instead of a browser
// syscall/js fetch, since this module runs in-process rather than in the
// browser.
package llmentities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

const systemPrompt = `Extract canonical entities from the user's text. ` +
	`Respond with nothing but a comma-separated list of Type:Value pairs ` +
	`(e.g. "Person:Ada Lovelace, Project:Apollo"). If no entities are present, respond with an empty string.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// OpenRouterExtractor implements archive.EntityExtractor by asking an
// OpenRouter chat model to list the canonical entities in a piece of text.
type OpenRouterExtractor struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewOpenRouterExtractor constructs an extractor against the given model
// (e.g. "nvidia/nemotron-3-nano-30b-a3b:free").
func NewOpenRouterExtractor(apiKey, model string) *OpenRouterExtractor {
	return &OpenRouterExtractor{
		apiKey:     apiKey,
		model:      model,
		endpoint:   openRouterURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Extract satisfies archive.EntityExtractor.
func (o *OpenRouterExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
		MaxTokens:   512,
		Stream:      false,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llmentities: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llmentities: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llmentities: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("llmentities: parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("llmentities: openrouter error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llmentities: empty response")
	}

	return parseCanonicalList(parsed.Choices[0].Message.Content), nil
}

// parseCanonicalList splits a comma-separated reply into well-formed
// "Type:Value" strings, silently dropping anything the model returned
// that isn't one (stray prose, trailing punctuation).
func parseCanonicalList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		idx := strings.IndexByte(p, ':')
		if idx <= 0 || idx == len(p)-1 {
			continue
		}
		out = append(out, p)
	}
	return out
}
