// Package voyage implements the Embedder interface against the Voyage AI
// contextualized embeddings endpoint.
package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Client is a contextualized-embeddings client for query embedding.
// The corpus was indexed with the same model, so input_type "query" and the
// output dimension must match what the offline ingestion used.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	outputDim  int
	client     *http.Client
	maxRetries int
	log        *zap.Logger
}

// Config configures the Voyage embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	OutputDim int
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.voyageai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "voyage-context-3"
	}
	if cfg.OutputDim == 0 {
		cfg.OutputDim = 2048
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		outputDim:  cfg.OutputDim,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
		log:        log,
	}, nil
}

type embedRequest struct {
	Inputs          [][]string `json:"inputs"`
	Model           string     `json:"model"`
	InputType       string     `json:"input_type"`
	OutputDimension int        `json:"output_dimension"`
}

type embedResponse struct {
	Results []struct {
		Embeddings [][]float64 `json:"embeddings"`
	} `json:"results"`
}

// EmbedQuery returns a single dense vector for the given query text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	url := fmt.Sprintf("%s/contextualizedembeddings", c.baseURL)
	body := embedRequest{
		Inputs:          [][]string{{text}},
		Model:           c.model,
		InputType:       "query",
		OutputDimension: c.outputDim,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if err := c.waitRetry(ctx, attempt, retryDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("voyage embeddings failed: %s", resp.Status)
			_ = resp.Body.Close()
			delay := retryDelay(attempt)
			// An integer Retry-After replaces the backoff step for this retry.
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				delay = time.Duration(secs) * time.Second
			}
			if err := c.waitRetry(ctx, attempt, delay); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, fmt.Errorf("voyage embeddings failed: %s: %s", resp.Status, string(payload))
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		var out embedResponse
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("decode voyage response: %w", err)
		}
		if len(out.Results) == 0 || len(out.Results[0].Embeddings) == 0 {
			return nil, errors.New("no embedding returned")
		}
		vec := out.Results[0].Embeddings[0]
		c.log.Debug("query embedded", zap.Int("dimension", len(vec)))
		return vec, nil
	}
	return nil, lastErr
}

// waitRetry sleeps before the next attempt. The final attempt exits the loop
// immediately, so no delay is taken after it.
func (c *Client) waitRetry(ctx context.Context, attempt int, d time.Duration) error {
	if attempt >= c.maxRetries {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
