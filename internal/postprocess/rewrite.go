package postprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/keymapd/keyhac/internal/config"
)

// Rewriter posts the transcript to {base_url}/chat/completions with the
// tone's system prompt and returns the first choice.
type Rewriter struct {
	endpoint string
	model    string
	prompt   string
	timeout  time.Duration
	client   *http.Client
	logger   *log.Logger
}

// NewRewriter builds the chat-completions backend for one tone prompt.
func NewRewriter(cfg *config.PostProcessingConfig, prompt string, logger *log.Logger) *Rewriter {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Rewriter{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:    cfg.Model,
		prompt:   prompt,
		timeout:  timeout,
		client:   &http.Client{},
		logger:   logger,
	}
}

type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResult struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Rewrite satisfies PostProcessor.
func (r *Rewriter) Rewrite(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(chatPayload{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.prompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if r.logger != nil {
		r.logger.Printf("postprocess: POST %s model=%s text=%dB", r.endpoint, r.model, len(text))
	}
	began := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if r.logger != nil {
		r.logger.Printf("postprocess: status=%d in %s", resp.StatusCode, time.Since(began).Round(time.Millisecond))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rewrite failed (status %d): %s", resp.StatusCode, raw)
	}

	var result chatResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
