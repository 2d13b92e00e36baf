// Package openaicompat streams chat completions from any OpenAI-compatible
// endpoint. Both configured backends speak this protocol: OpenAI natively
// and Gemini through its OpenAI-compatibility base URL.
package openaicompat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"nhsrag/internal/domain"
)

// Client is a streaming chat-completions client for one backend endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Config configures the chat client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewClient creates a chat client, reading the API key from the configured
// environment variable.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  key,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Stream requests a streaming completion with temperature pinned to 0 and
// forwards each non-empty text delta as it arrives. The content channel is
// closed on stream exhaustion; at most one error is sent on the error
// channel. Cancelling ctx tears down the HTTP stream.
func (c *Client) Stream(ctx context.Context, model string, messages []domain.PromptMessage) (<-chan string, <-chan error) {
	content := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(content)
		defer close(errs)

		reqBody := chatRequest{
			Model:       model,
			Messages:    toWire(messages),
			Temperature: 0,
			Stream:      true,
		}
		data, err := json.Marshal(reqBody)
		if err != nil {
			errs <- fmt.Errorf("marshal chat request: %w", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
		if err != nil {
			errs <- fmt.Errorf("create chat request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			errs <- fmt.Errorf("chat request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(resp.Body)
			var apiErr errorResponse
			if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Error != nil {
				errs <- fmt.Errorf("chat API error [%d]: %s", resp.StatusCode, apiErr.Error.Message)
				return
			}
			errs <- fmt.Errorf("chat API error [%d]: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				return
			}
			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				// Skip malformed chunks
				continue
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case content <- choice.Delta.Content:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			errs <- fmt.Errorf("read chat stream: %w", err)
		}
	}()

	return content, errs
}

func toWire(messages []domain.PromptMessage) []chatMessage {
	wire := make([]chatMessage, len(messages))
	for i, m := range messages {
		wire[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}
	return wire
}
