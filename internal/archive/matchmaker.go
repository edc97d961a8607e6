package archive

import "github.com/kittclouds/cortex/internal/vectorstore"

// MatchStrategy is the Matchmaker's classification of smart_lookup's
// outcome, in order of descending confidence.
type MatchStrategy string

const (
	ExactHit          MatchStrategy = "EXACT_HIT"
	SemanticHint      MatchStrategy = "SEMANTIC_HINT"
	EntityHop         MatchStrategy = "ENTITY_HOP"
	StandardRetrieval MatchStrategy = "STANDARD_RETRIEVAL"
)

// SearchResult is one ranked retrieval outcome: a candidate thought with
// its score decomposed into the pieces that produced it, so a caller can
// explain a ranking without recomputing it.
type SearchResult struct {
	Thought     *vectorstore.Thought
	BaseScore   float64
	FinalScore  float64
	IsBoosted   bool
	DecayFactor float64
}

// LookupResult is smart_lookup's classified outcome.
type LookupResult struct {
	Strategy MatchStrategy
	Score    float64
	Content  map[string]any
}

// SlimResult is a minimal, adapter-facing projection of a SearchResult,
// trimming it to the fields a caller across a process boundary would
// actually serialize, the way pkg/response.SlimGraph trims a
// ConceptGraph down for the wire.
type SlimResult struct {
	ThoughtID string  `json:"thought_id"`
	Score     float64 `json:"score"`
	IsBoosted bool    `json:"is_boosted"`
}

// SlimResults projects a ranked result list down to SlimResult.
func SlimResults(results []SearchResult) []SlimResult {
	out := make([]SlimResult, 0, len(results))
	for _, r := range results {
		out = append(out, SlimResult{
			ThoughtID: r.Thought.ID,
			Score:     r.FinalScore,
			IsBoosted: r.IsBoosted,
		})
	}
	return out
}
