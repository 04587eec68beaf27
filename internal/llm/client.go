// Package llm is the boundary to the optional model backend. The dispatcher
// treats it as a pluggable capability: when it is absent or failing, chat
// degrades to the deterministic intent grammar, never to an error.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks any backend failure. Callers catch it and fall back;
// it is never surfaced to the end user.
var ErrUnavailable = errors.New("model backend unavailable")

// Backend answers free-text questions that fall outside the intent grammar.
type Backend interface {
	Answer(ctx context.Context, contextText, question string) (string, error)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message message `json:"message"`
}

// OllamaBackend talks to an Ollama-compatible chat endpoint over HTTP.
type OllamaBackend struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllamaBackend(baseURL, model string, timeout time.Duration) *OllamaBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

const systemPrompt = "You are a sports statistics assistant. Answer concisely " +
	"using only the provided data context. If the context does not cover the " +
	"question, say you do not have that data."

// Answer sends the question with the structured data context. Every failure
// mode maps to ErrUnavailable.
func (b *OllamaBackend) Answer(ctx context.Context, contextText, question string) (string, error) {
	reqBody := chatRequest{
		Model: b.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Data context:\n" + contextText + "\n\nQuestion: " + question},
		},
		Stream: false,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	answer := strings.TrimSpace(out.Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return answer, nil
}
