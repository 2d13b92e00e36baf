package domain

import "context"

// SearchResult is one retrieved passage with its relevance score.
// Results are created per query and consumed immediately; nothing is persisted.
type SearchResult struct {
	ID       string
	Score    float64
	Metadata ResultMetadata
}

// ResultMetadata carries the passage fields attached by the vector index.
type ResultMetadata struct {
	OriginalID   string
	URL          string
	DocumentText string
	Source       string
}

// Citation is a display-ready record identifying the source passage behind
// part of an answer.
type Citation struct {
	Source       string
	OriginalID   string
	URL          string
	CleanSection string
}

// Role identifies the author of a prompt message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// PromptMessage is one entry of the ordered message sequence sent to a
// generation backend. Order is load-bearing: backends weight earlier
// messages as higher-priority instructions.
type PromptMessage struct {
	Role    Role
	Content string
}

// StreamChunk is one incremental piece of a streamed answer. Citations are
// computed once before streaming starts and are identical across every
// chunk of one query. Fault marks chunks whose text is an error message
// rather than model output.
type StreamChunk struct {
	Text      string
	Citations []Citation
	Fault     bool
}

// Embedder converts query text into a dense vector representation.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex answers nearest-neighbor queries against a named namespace,
// returning matches in descending similarity order with metadata attached.
type VectorIndex interface {
	Query(ctx context.Context, vector []float64, topK int, namespace string) ([]SearchResult, error)
}

// Searcher combines embedding and index lookup into one operation.
// Failures degrade to an empty result slice; they are logged, never returned,
// because "nothing found" has a well-defined downstream path.
type Searcher interface {
	Search(ctx context.Context, query, namespace string, topK int) []SearchResult
}

// ChatBackend streams a chat completion for the given model and messages.
// The content channel carries non-empty text deltas in arrival order and is
// closed on exhaustion; at most one error is delivered on the error channel.
type ChatBackend interface {
	Stream(ctx context.Context, model string, messages []PromptMessage) (<-chan string, <-chan error)
}
