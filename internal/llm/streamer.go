// Package llm dispatches prompt sequences to a configured generation
// backend and exposes a uniform stream of answer chunks.
package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nhsrag/internal/domain"
)

// BackendRoute binds a model-name match string to a chat backend. Match is
// compared against the lowercased model identifier.
type BackendRoute struct {
	Name    string
	Match   string
	Backend domain.ChatBackend
}

// Streamer resolves a model identifier to a backend through an ordered
// route table and forwards its deltas paired with the precomputed citations.
type Streamer struct {
	routes []BackendRoute
	log    *zap.Logger
}

func NewStreamer(routes []BackendRoute, log *zap.Logger) *Streamer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Streamer{routes: routes, log: log}
}

// Stream starts a generation request and returns a channel of chunks. Every
// chunk carries the same citations. If no backend matches the model, the
// channel yields exactly one fault chunk with empty citations. A backend
// fault after streaming has started yields one final fault chunk; text
// already delivered stands. The channel is always closed.
func (s *Streamer) Stream(ctx context.Context, messages []domain.PromptMessage, model string, citations []domain.Citation) <-chan domain.StreamChunk {
	out := make(chan domain.StreamChunk)
	go func() {
		defer close(out)

		backend, name, ok := s.resolve(model)
		if !ok {
			s.log.Error("no backend configured for model", zap.String("model", model))
			emit(ctx, out, domain.StreamChunk{
				Text:  fmt.Sprintf("unsupported LLM model or no configured backend: %s", model),
				Fault: true,
			})
			return
		}
		s.log.Debug("dispatching generation request",
			zap.String("model", model),
			zap.String("backend", name))

		content, errs := backend.Stream(ctx, model, messages)
		for delta := range content {
			if !emit(ctx, out, domain.StreamChunk{Text: delta, Citations: citations}) {
				return
			}
		}
		if err := <-errs; err != nil {
			s.log.Error("generation stream failed", zap.String("model", model), zap.Error(err))
			emit(ctx, out, domain.StreamChunk{
				Text:  "Error generating response: " + err.Error(),
				Fault: true,
			})
		}
	}()
	return out
}

func (s *Streamer) resolve(model string) (domain.ChatBackend, string, bool) {
	lowered := strings.ToLower(model)
	for _, r := range s.routes {
		if r.Match != "" && strings.Contains(lowered, r.Match) {
			return r.Backend, r.Name, true
		}
	}
	return nil, "", false
}

func emit(ctx context.Context, out chan<- domain.StreamChunk, chunk domain.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
