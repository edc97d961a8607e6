// Package memoryarchive is the public entry point to the hybrid
// neuro-symbolic memory engine: a root-level re-export of internal/archive
// and internal/relocation so external callers never need to reach into
// this module's internal packages.
package memoryarchive

import (
	"context"

	"github.com/kittclouds/cortex/internal/archive"
	"github.com/kittclouds/cortex/internal/graphstore"
	"github.com/kittclouds/cortex/internal/relocation"
	"github.com/kittclouds/cortex/internal/vectorstore"
)

type (
	// Archive is the facade tying every store together.
	Archive = archive.Archive
	// Config wires an Archive's collaborators and tunables.
	Config = archive.Config
	// Embedder produces the vector stored with each thought.
	Embedder = archive.Embedder
	// EntityExtractor runs in the background to populate a thought's
	// entities and link them into the graph.
	EntityExtractor = archive.EntityExtractor
	// QueryEntityExtractor widens retrieve's boost set with entities
	// recognized directly in the query text.
	QueryEntityExtractor = archive.QueryEntityExtractor
	// StubQueryExtractor is an Aho-Corasick-backed QueryEntityExtractor
	// over a fixed set of previously-registered canonical entities.
	StubQueryExtractor = archive.StubQueryExtractor
	// UserContext carries the identity and memberships of the caller
	// making a request.
	UserContext = archive.UserContext
	// AddThoughtInput is the caller-supplied shape of a new thought.
	AddThoughtInput = archive.AddThoughtInput
	// RetrieveOptions tunes a single Retrieve call.
	RetrieveOptions = archive.RetrieveOptions
	// SearchResult is one ranked retrieval outcome.
	SearchResult = archive.SearchResult
	// SlimResult is a minimal, adapter-facing projection of a SearchResult.
	SlimResult = archive.SlimResult
	// LookupResult is SmartLookup's classified outcome.
	LookupResult = archive.LookupResult
	// MatchStrategy is the Matchmaker's classification of a retrieval
	// outcome.
	MatchStrategy = archive.MatchStrategy
	// Scope is the containment level governing a thought's visibility and
	// decay rate.
	Scope = vectorstore.Scope
	// RelocationManager sanitizes a user's personal memory on a
	// department transfer.
	RelocationManager = relocation.Manager
)

const (
	ExactHit          = archive.ExactHit
	SemanticHint      = archive.SemanticHint
	EntityHop         = archive.EntityHop
	StandardRetrieval = archive.StandardRetrieval

	ScopeUser       = vectorstore.ScopeUser
	ScopeProject    = vectorstore.ScopeProject
	ScopeDepartment = vectorstore.ScopeDepartment
	ScopeClient     = vectorstore.ScopeClient
)

var (
	// ErrDimensionMismatch is returned when a thought's vector length
	// disagrees with the dimensionality fixed by a store's first insert.
	ErrDimensionMismatch = archive.ErrDimensionMismatch
	// ErrInvalidEntityFormat is returned for a canonical entity string
	// with no colon, an empty type, or an empty value.
	ErrInvalidEntityFormat = archive.ErrInvalidEntityFormat
	// ErrSovereigntyViolation is returned when a USER-scoped write's
	// scope id disagrees with the caller's own user id.
	ErrSovereigntyViolation = archive.ErrSovereigntyViolation
)

// New constructs an Archive from cfg.
func New(cfg Config) (*Archive, error) {
	return archive.New(cfg)
}

// NewStubQueryExtractor builds a QueryEntityExtractor over the given
// canonical entities.
func NewStubQueryExtractor(canonicalEntities []string) (*StubQueryExtractor, error) {
	return archive.NewStubQueryExtractor(canonicalEntities)
}

// NewRelocationManager constructs a RelocationManager over an Archive's
// own stores.
func NewRelocationManager(a *Archive) *RelocationManager {
	return relocation.New(a.VectorStore(), a.GraphStore())
}

// GraphDirection re-exports internal/graphstore's Direction constants for
// callers that call DefineEntityRelationship alongside a manual
// GetRelatedEntities traversal.
type GraphDirection = graphstore.Direction

const (
	DirectionOutgoing = graphstore.DirectionOutgoing
	DirectionIncoming = graphstore.DirectionIncoming
	DirectionBoth     = graphstore.DirectionBoth
)

// Close releases an Archive's background task runner and graph store
// connection, waiting for outstanding background extraction to finish or
// for ctx to be done, whichever comes first.
func Close(ctx context.Context, a *Archive) error {
	return a.Close(ctx)
}
