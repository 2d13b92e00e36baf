// Package search combines query embedding and index lookup into one
// similarity-search operation.
package search

import (
	"context"

	"go.uber.org/zap"

	"nhsrag/internal/domain"
)

// Client implements domain.Searcher over an Embedder and a VectorIndex.
type Client struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	log      *zap.Logger
}

func NewClient(embedder domain.Embedder, index domain.VectorIndex, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{embedder: embedder, index: index, log: log}
}

// Search embeds the query and runs a nearest-neighbor lookup against the
// named namespace. Any embedding or index failure is logged and degrades to
// an empty result slice; zero results is a legitimate outcome downstream.
func (c *Client) Search(ctx context.Context, query, namespace string, topK int) []domain.SearchResult {
	vector, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		c.log.Error("query embedding failed", zap.Error(err))
		return nil
	}
	results, err := c.index.Query(ctx, vector, topK, namespace)
	if err != nil {
		c.log.Error("similarity search failed", zap.String("namespace", namespace), zap.Error(err))
		return nil
	}
	c.log.Info("similarity search completed",
		zap.String("namespace", namespace),
		zap.Int("top_k", topK),
		zap.Int("results", len(results)))
	return results
}
