package archive

import "context"

// Embedder is the pluggable embedding collaborator. Only its interface is
// defined here; concrete implementations (calling an LLM provider, a
// local model, etc.) live in an adapter layer outside this package.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EntityExtractor is the pluggable, asynchronous, possibly-failing
// collaborator used for background entity extraction at ingestion. Its
// result must be idempotent in effect: re-extracting the same text and
// writing the result back twice must leave the graph in the same state.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// QueryEntityExtractor is an optional, synchronous helper that widens a
// retrieval's boost set with entities recognized directly in the query
// text. Unlike EntityExtractor, retrieve calls it inline, so it must not
// block on an external service.
type QueryEntityExtractor interface {
	ExtractQueryEntities(text string) []string
}
