// Package app assembles the query pipeline from configuration. Both entry
// points (CLI and chat TUI) build the same object graph through here.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"nhsrag/internal/config"
	"nhsrag/internal/domain"
	"nhsrag/internal/embedding/voyage"
	"nhsrag/internal/llm"
	"nhsrag/internal/llm/openaicompat"
	"nhsrag/internal/pipeline"
	"nhsrag/internal/search"
	"nhsrag/internal/vectorindex/memory"
	"nhsrag/internal/vectorindex/pinecone"
)

// BuildPipeline wires the embedding client, index client, search client and
// generation streamer per the loaded config. Backends whose API key env is
// unset are skipped: a model routed to a skipped backend surfaces as an
// unsupported-model chunk at query time rather than a startup failure.
func BuildPipeline(cfg *config.AppConfig, log *zap.Logger) (*pipeline.Pipeline, error) {
	embedder, err := voyage.NewClient(voyage.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		Model:     cfg.Embedding.Model,
		OutputDim: cfg.Embedding.OutputDim,
		Timeout:   time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}

	var index domain.VectorIndex
	switch cfg.Index.Type {
	case "pinecone", "":
		index, err = pinecone.NewIndex(pinecone.Config{
			Host:      cfg.Index.Host,
			APIKeyEnv: cfg.Index.APIKeyEnv,
			Timeout:   time.Duration(cfg.Index.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("init vector index client: %w", err)
		}
	case "memory":
		index = memory.NewIndex()
	default:
		return nil, fmt.Errorf("unknown index type: %s", cfg.Index.Type)
	}

	var routes []llm.BackendRoute
	for _, b := range cfg.Backends {
		client, err := openaicompat.NewClient(openaicompat.Config{
			BaseURL:   b.BaseURL,
			APIKeyEnv: b.APIKeyEnv,
			Timeout:   time.Duration(b.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Warn("skipping generation backend", zap.String("backend", b.Name), zap.Error(err))
			continue
		}
		routes = append(routes, llm.BackendRoute{Name: b.Name, Match: b.Match, Backend: client})
	}

	searcher := search.NewClient(embedder, index, log)
	streamer := llm.NewStreamer(routes, log)
	return pipeline.New(searcher, streamer, cfg.Index.Namespace, log), nil
}
