// Package pinecone is a minimal REST client to a Pinecone serverless index.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"nhsrag/internal/domain"
)

// Index queries one Pinecone index over its data-plane REST API.
type Index struct {
	host   string
	apiKey string
	client *http.Client
}

type Config struct {
	Host      string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewIndex creates a query client for the index reachable at cfg.Host.
func NewIndex(cfg Config) (*Index, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Host == "" {
		return nil, errors.New("pinecone host not configured")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	host := cfg.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return &Index{
		host:   strings.TrimSuffix(host, "/"),
		apiKey: key,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type queryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query returns up to topK matches from the given namespace, in the index's
// descending-similarity order, with metadata attached.
func (x *Index) Query(ctx context.Context, vector []float64, topK int, namespace string) ([]domain.SearchResult, error) {
	body := queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       namespace,
		IncludeMetadata: true,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.host+"/query", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", x.apiKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pinecone query failed: %s: %s", resp.Status, string(payload))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode pinecone response: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(out.Matches))
	for _, m := range out.Matches {
		results = append(results, domain.SearchResult{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: decodeMetadata(m.Metadata),
		})
	}
	return results, nil
}

func decodeMetadata(raw map[string]any) domain.ResultMetadata {
	md := domain.ResultMetadata{}
	if v, ok := raw["original_id"].(string); ok {
		md.OriginalID = v
	}
	if v, ok := raw["url"].(string); ok {
		md.URL = v
	}
	if v, ok := raw["document_text"].(string); ok {
		md.DocumentText = v
	}
	if v, ok := raw["source"].(string); ok {
		md.Source = v
	}
	return md
}
