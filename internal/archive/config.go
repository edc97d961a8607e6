package archive

import "go.uber.org/zap"

// Config wires an Archive's collaborators and tunables. Only Embedder is
// required; every other field has a documented default.
type Config struct {
	// Embedder produces the vector stored with each thought. Required.
	Embedder Embedder

	// Extractor runs in the background after ingestion to populate a
	// thought's Entities and link them into the graph. Optional: when nil,
	// thoughts are never structurally linked to extracted entities (only
	// the synchronous CREATED/BELONGS_TO edges are written).
	Extractor EntityExtractor

	// QueryExtractor widens retrieve's boost set with entities recognized
	// directly in the query text. Optional.
	QueryExtractor QueryEntityExtractor

	// Logger receives structured notices from every collaborating store and
	// the task runner. A nil Logger is replaced with a no-op logger.
	Logger *zap.Logger

	// GraphDSN is the SQLite DSN backing the graph store. Empty defaults to
	// an in-memory database.
	GraphDSN string

	// DefaultGraphBoostFactor multiplies a candidate's cosine score when it
	// shares an entity with the retrieval's boost set. Zero defaults to 1.1.
	DefaultGraphBoostFactor float64

	// ExactThreshold is smart_lookup's minimum final score for EXACT_HIT.
	// Zero defaults to 0.99.
	ExactThreshold float64

	// HintThreshold is smart_lookup's minimum final score for
	// SEMANTIC_HINT. Zero defaults to 0.85.
	HintThreshold float64
}
