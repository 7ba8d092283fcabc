// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides single-turn completion clients for the Anthropic
// and OpenAI APIs. Callers depend only on the Complete method; there is no
// streaming and no multi-turn state.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/litreview/pkg/types"
)

// API endpoints. Declared as vars so tests can substitute httptest servers.
var (
	anthropicAPIBase = "https://api.anthropic.com/v1/messages"
	openaiAPIBase    = "https://api.openai.com/v1/chat/completions"
)

const completionMaxTokens = 256

// Completer is the single-turn completion contract.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New returns a Completer for the configured provider. An unknown provider
// or a missing API key is a configuration error and fails immediately.
func New(cfg types.LLMConfig, client *http.Client) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key for LLM provider %q", cfg.Provider)
	}
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return &Anthropic{APIKey: cfg.APIKey, Model: cfg.Model, Client: client}, nil
	case "openai":
		return &OpenAI{APIKey: cfg.APIKey, Model: cfg.Model, Client: client}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	APIKey string
	Model  string
	Client *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends prompt as a single user message and returns the
// concatenated text blocks of the response.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt must be provided")
	}

	reqBody := anthropicRequest{
		Model:     a.Model,
		MaxTokens: completionMaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(body))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}

	var sb strings.Builder
	for _, block := range aResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("Anthropic API returned empty content")
	}
	return text, nil
}

func (a *Anthropic) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

// OpenAI calls the OpenAI Chat Completions API.
type OpenAI struct {
	APIKey string
	Model  string
	Client *http.Client
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	Messages    []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as a single user message and returns the first
// choice's text.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt must be provided")
	}

	reqBody := openaiRequest{
		Model:    o.Model,
		Messages: []openaiMessage{{Role: "user", Content: prompt}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, string(body))
	}

	var oResp openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}
	if len(oResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return strings.TrimSpace(oResp.Choices[0].Message.Content), nil
}

func (o *OpenAI) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
