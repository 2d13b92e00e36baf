// Package pipeline is the single entry point of the query layer: it
// validates input, retrieves passages, builds the prompt and streams the
// grounded answer. Failures never escape the chunk channel; every failure
// mode is delivered in the same shape the caller already consumes.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nhsrag/internal/assemble"
	"nhsrag/internal/config"
	"nhsrag/internal/domain"
	"nhsrag/internal/prompt"
)

// NotFoundText is the terminal chunk emitted when retrieval returns nothing;
// generation is skipped entirely in that case.
const NotFoundText = "I couldn't find any relevant information to answer your question."

// Generator is the pipeline-facing subset of the generation streamer.
type Generator interface {
	Stream(ctx context.Context, messages []domain.PromptMessage, model string, citations []domain.Citation) <-chan domain.StreamChunk
}

// Pipeline wires the retrieval and generation stages. Instances hold only
// read-only configuration and stateless clients, so one instance may serve
// concurrent queries.
type Pipeline struct {
	searcher  domain.Searcher
	generator Generator
	namespace string
	log       *zap.Logger
}

func New(searcher domain.Searcher, generator Generator, namespace string, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{searcher: searcher, generator: generator, namespace: namespace, log: log}
}

// Run executes one query and returns a channel of answer chunks. Citations
// are computed once before streaming begins and repeated on every chunk.
// Validation failures and backend faults arrive as fault chunks; the channel
// is always closed. Cancelling ctx abandons the stream and releases the
// underlying connection.
func (p *Pipeline) Run(ctx context.Context, query, model string, topK int, source string) <-chan domain.StreamChunk {
	out := make(chan domain.StreamChunk, 1)
	log := p.log.With(zap.String("query_id", uuid.NewString()))

	go func() {
		defer close(out)

		query = strings.TrimSpace(query)
		if query == "" {
			fault(ctx, out, "query text cannot be empty")
			return
		}
		if topK <= 0 {
			fault(ctx, out, "top_k must be a positive integer")
			return
		}
		srcConfig, err := config.ResolveSource(source)
		if err != nil {
			fault(ctx, out, err.Error())
			return
		}

		log.Info("query accepted",
			zap.String("model", model),
			zap.Int("top_k", topK),
			zap.String("source", source))

		results := p.searcher.Search(ctx, query, p.namespace, topK)
		if len(results) == 0 {
			log.Info("no results, skipping generation")
			emit(ctx, out, domain.StreamChunk{Text: NotFoundText})
			return
		}

		contextText := assemble.BuildContext(results)
		messages := prompt.Build(contextText, srcConfig, query)
		citations := assemble.ExtractCitations(results)

		for chunk := range p.generator.Stream(ctx, messages, model, citations) {
			if !emit(ctx, out, chunk) {
				return
			}
		}
	}()
	return out
}

func fault(ctx context.Context, out chan<- domain.StreamChunk, text string) {
	emit(ctx, out, domain.StreamChunk{Text: text, Fault: true})
}

func emit(ctx context.Context, out chan<- domain.StreamChunk, chunk domain.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
