// Package archive is the Archive facade: the single entry point that ties
// VectorStore, GraphStore, TemporalRanker, FederationBroker and TaskRunner
// together into ingestion, retrieval, and lookup-vs-compute classification,
// grounded on coreason_archive.archive.Archive from original_source.
package archive

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kittclouds/cortex/internal/federation"
	"github.com/kittclouds/cortex/internal/graphstore"
	"github.com/kittclouds/cortex/internal/idgen"
	"github.com/kittclouds/cortex/internal/ranker"
	"github.com/kittclouds/cortex/internal/tasks"
	"github.com/kittclouds/cortex/internal/usercontext"
	"github.com/kittclouds/cortex/internal/vectorstore"
)

// UserContext is re-exported so callers of this package never need to
// import internal/usercontext directly.
type UserContext = usercontext.UserContext

// Archive is the facade wiring every collaborating store together. The
// zero value is not usable; construct with New.
type Archive struct {
	vectorStore *vectorstore.Store
	graphStore  *graphstore.Store

	embedder       Embedder
	extractor      EntityExtractor
	queryExtractor QueryEntityExtractor

	taskRunner *tasks.Runner
	logger     *zap.Logger

	exactThreshold          float64
	hintThreshold           float64
	defaultGraphBoostFactor float64
}

// New constructs an Archive from cfg, opening its own graph store.
func New(cfg Config) (*Archive, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("archive: Config.Embedder is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := cfg.GraphDSN
	if dsn == "" {
		dsn = ":memory:"
	}
	gs, err := graphstore.NewWithDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open graph store: %w", err)
	}
	gs.SetLogger(logger)

	vs := vectorstore.New()
	vs.SetLogger(logger)

	exact := cfg.ExactThreshold
	if exact == 0 {
		exact = 0.99
	}
	hint := cfg.HintThreshold
	if hint == 0 {
		hint = 0.85
	}
	boost := cfg.DefaultGraphBoostFactor
	if boost == 0 {
		boost = 1.1
	}

	return &Archive{
		vectorStore:             vs,
		graphStore:              gs,
		embedder:                cfg.Embedder,
		extractor:               cfg.Extractor,
		queryExtractor:          cfg.QueryExtractor,
		taskRunner:              tasks.New(logger),
		logger:                  logger,
		exactThreshold:          exact,
		hintThreshold:           hint,
		defaultGraphBoostFactor: boost,
	}, nil
}

// VectorStore exposes the underlying store, primarily so a
// RelocationManager can be constructed against the same Archive.
func (a *Archive) VectorStore() *vectorstore.Store { return a.vectorStore }

// GraphStore exposes the underlying store, primarily so a
// RelocationManager can be constructed against the same Archive.
func (a *Archive) GraphStore() *graphstore.Store { return a.graphStore }

// Close shuts down the background task runner and the graph store's
// database connection. It waits for outstanding background extraction to
// finish, or for ctx to be done, whichever comes first.
func (a *Archive) Close(ctx context.Context) error {
	shutdownErr := a.taskRunner.Shutdown(ctx)
	closeErr := a.graphStore.Close()
	if shutdownErr != nil {
		return shutdownErr
	}
	return closeErr
}

// AddThoughtInput is the caller-supplied shape of a new thought.
type AddThoughtInput struct {
	PromptText     string
	ReasoningTrace string
	FinalResponse  string
	Scope          vectorstore.Scope
	ScopeID        string
	UserID         string
	AccessRoles    []string
	SourceURNs     []string
	TTLSeconds     int64
}

func canonicalScopeID(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func scopeNode(scope vectorstore.Scope, scopeID string) string {
	id := canonicalScopeID(scopeID)
	switch scope {
	case vectorstore.ScopeUser:
		return "User:" + id
	case vectorstore.ScopeProject:
		return "Project:" + id
	case vectorstore.ScopeDepartment:
		return "Department:" + id
	case vectorstore.ScopeClient:
		return "Client:" + id
	default:
		return "Unknown:" + id
	}
}

// AddThought embeds, stores, and structurally links a new thought. It
// writes the CREATED and BELONGS_TO graph edges synchronously, then — if
// an EntityExtractor is configured — schedules background entity
// extraction and linking. A USER-scoped thought with no ScopeID is
// defaulted to the caller's own UserID; one whose ScopeID disagrees with
// UserID is rejected with ErrSovereigntyViolation before anything is
// written.
func (a *Archive) AddThought(ctx context.Context, in AddThoughtInput) (*vectorstore.Thought, error) {
	if in.Scope == vectorstore.ScopeUser {
		if in.ScopeID == "" {
			in.ScopeID = in.UserID
		} else if in.UserID != "" && in.ScopeID != in.UserID {
			return nil, fmt.Errorf("archive: scope_id %q for user %q: %w", in.ScopeID, in.UserID, ErrSovereigntyViolation)
		}
	}

	combinedText := in.PromptText + "\n" + in.FinalResponse
	vector, err := a.embedder.Embed(ctx, combinedText)
	if err != nil {
		return nil, fmt.Errorf("archive: embed thought: %w", err)
	}

	th := &vectorstore.Thought{
		ID:             idgen.New(),
		Vector:         vector,
		Scope:          in.Scope,
		ScopeID:        in.ScopeID,
		PromptText:     in.PromptText,
		ReasoningTrace: in.ReasoningTrace,
		FinalResponse:  in.FinalResponse,
		SourceURNs:     in.SourceURNs,
		CreatedAt:      time.Now().UTC(),
		TTLSeconds:     in.TTLSeconds,
		AccessRoles:    in.AccessRoles,
	}

	if err := a.vectorStore.Add(th); err != nil {
		return nil, err
	}

	userNode := "User:" + canonicalScopeID(in.UserID)
	thoughtNode := "Thought:" + th.ID
	if err := a.graphStore.AddRelationshipWithProvenance(userNode, thoughtNode, "CREATED", th.ID); err != nil {
		return nil, fmt.Errorf("archive: write CREATED edge: %w", err)
	}
	if err := a.graphStore.AddRelationshipWithProvenance(thoughtNode, scopeNode(in.Scope, in.ScopeID), "BELONGS_TO", th.ID); err != nil {
		return nil, fmt.Errorf("archive: write BELONGS_TO edge: %w", err)
	}

	if a.extractor != nil {
		a.taskRunner.Submit(ctx, "process_entities:"+th.ID, func(taskCtx context.Context) error {
			return a.processEntities(taskCtx, th, combinedText)
		})
	}

	return th, nil
}

// processEntities runs the configured EntityExtractor over a thought's
// text and links every returned entity to it. It only ever returns an
// error for the extractor call itself failing; a malformed entity string
// it returns is logged and skipped rather than aborting the whole batch.
func (a *Archive) processEntities(ctx context.Context, th *vectorstore.Thought, text string) error {
	entities, err := a.extractor.Extract(ctx, text)
	if err != nil {
		return fmt.Errorf("extract entities for thought %s: %w", th.ID, err)
	}

	if !a.vectorStore.SetEntities(th.ID, entities) {
		// The thought was deleted (by relocation) before
		// extraction finished; nothing left to link.
		return nil
	}

	thoughtNode := "Thought:" + th.ID
	for _, e := range entities {
		if err := a.graphStore.AddRelationshipWithProvenance(e, thoughtNode, "RELATED_TO", th.ID); err != nil {
			a.logger.Warn("skipping malformed extracted entity",
				zap.String("thought_id", th.ID), zap.String("entity", e), zap.Error(err))
			continue
		}
		if err := a.graphStore.AddRelationshipWithProvenance(thoughtNode, e, "RELATED_TO", th.ID); err != nil {
			a.logger.Warn("skipping malformed extracted entity",
				zap.String("thought_id", th.ID), zap.String("entity", e), zap.Error(err))
		}
	}
	return nil
}

// RetrieveOptions tunes a single Retrieve call. A zero Limit defaults to
// 10; a zero GraphBoostFactor defaults to the Archive's configured
// default.
type RetrieveOptions struct {
	Limit            int
	MinScore         float64
	GraphBoostFactor float64
}

// Retrieve performs scope/RBAC-filtered, graph-boosted, temporally-decayed
// semantic search. It over-fetches candidates (limit*5) from the vector
// store before filtering, so that thoughts excluded by federation still
// leave enough candidates to fill limit.
func (a *Archive) Retrieve(ctx context.Context, query string, uc UserContext, opts RetrieveOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	boostFactor := opts.GraphBoostFactor
	if boostFactor == 0 {
		boostFactor = a.defaultGraphBoostFactor
	}

	queryVector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("archive: embed query: %w", err)
	}

	candidates := a.vectorStore.Search(queryVector, limit*5, opts.MinScore)
	if len(candidates) == 0 {
		return nil, nil
	}

	pred := federation.BuildPredicate(uc)
	boostSet, err := a.buildBoostSet(uc, query)
	if err != nil {
		return nil, fmt.Errorf("archive: build boost set: %w", err)
	}

	now := time.Now().UTC()
	results := make([]SearchResult, 0, len(candidates))
	for _, m := range candidates {
		if !pred(m.Thought) {
			continue
		}

		boosted := sharesEntity(m.Thought.Entities, boostSet)
		score := m.Score
		if boosted {
			score *= boostFactor
		}
		decay := ranker.DecayFactor(m.Thought.Scope, m.Thought.CreatedAt, now)

		results = append(results, SearchResult{
			Thought:     m.Thought,
			BaseScore:   m.Score,
			FinalScore:  score * decay,
			IsBoosted:   boosted,
			DecayFactor: decay,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].FinalScore > results[j].FinalScore })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func sharesEntity(entities []string, set map[string]struct{}) bool {
	for _, e := range entities {
		if _, ok := set[e]; ok {
			return true
		}
	}
	return false
}

// buildBoostSet is the boost set construction step of Retrieve: the
// caller's project memberships, widened by their 1-hop graph neighbors in
// either direction, plus — if a QueryEntityExtractor is configured — any
// canonical entities recognized directly in the query text, similarly
// widened. 2-hop neighbors are explicitly out of scope.
func (a *Archive) buildBoostSet(uc UserContext, query string) (map[string]struct{}, error) {
	set := make(map[string]struct{})

	seeds := make([]string, 0, len(uc.ProjectIDs))
	for _, p := range uc.ProjectIDs {
		seeds = append(seeds, "Project:"+p)
	}
	if a.queryExtractor != nil {
		seeds = append(seeds, a.queryExtractor.ExtractQueryEntities(query)...)
	}

	for _, seed := range seeds {
		set[seed] = struct{}{}
		neighbors, err := a.graphStore.GetRelatedEntities(seed, "", graphstore.DirectionBoth)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			set[n.Neighbor] = struct{}{}
		}
	}
	return set, nil
}

// SmartLookup classifies a query against the lookup-vs-compute strategy
// ladder: EXACT_HIT (final score at or above the exact threshold) takes
// precedence over SEMANTIC_HINT (hint threshold), which takes precedence
// over ENTITY_HOP (any remaining graph-boosted hit), which falls back to
// STANDARD_RETRIEVAL.
func (a *Archive) SmartLookup(ctx context.Context, query string, uc UserContext) (*LookupResult, error) {
	results, err := a.Retrieve(ctx, query, uc, RetrieveOptions{Limit: 5})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &LookupResult{
			Strategy: StandardRetrieval,
			Content:  map[string]any{"message": "no relevant memories found"},
		}, nil
	}

	top := results[0]
	switch {
	case top.FinalScore >= a.exactThreshold:
		return &LookupResult{
			Strategy: ExactHit,
			Score:    top.FinalScore,
			Content: map[string]any{
				"prompt_text":     top.Thought.PromptText,
				"reasoning_trace": top.Thought.ReasoningTrace,
				"final_response":  top.Thought.FinalResponse,
			},
		}, nil
	case top.FinalScore >= a.hintThreshold:
		return &LookupResult{
			Strategy: SemanticHint,
			Score:    top.FinalScore,
			Content:  map[string]any{"reasoning_trace": top.Thought.ReasoningTrace},
		}, nil
	case top.IsBoosted:
		return &LookupResult{
			Strategy: EntityHop,
			Score:    top.FinalScore,
			Content: map[string]any{
				"reasoning_trace": top.Thought.ReasoningTrace,
				"note":            "structurally related via shared entity",
			},
		}, nil
	default:
		return &LookupResult{
			Strategy: StandardRetrieval,
			Score:    top.FinalScore,
			Content:  map[string]any{"results": results},
		}, nil
	}
}

// DefineEntityRelationship adds an explicit, user-declared edge between two
// canonical entities, bypassing extraction entirely.
func (a *Archive) DefineEntityRelationship(source, target, relation string) error {
	return a.graphStore.AddRelationship(source, target, relation)
}

// InvalidateSource marks every thought sourced from urn as stale, returning
// how many were flipped. Stale thoughts remain searchable; callers decide
// how to treat IsStale.
func (a *Archive) InvalidateSource(urn string) int {
	return a.vectorStore.MarkStaleByURN(urn)
}

// SaveSnapshots persists both stores to disk at the given paths.
func (a *Archive) SaveSnapshots(vectorPath, graphPath string) error {
	if err := a.vectorStore.Save(vectorPath); err != nil {
		return fmt.Errorf("archive: save vector snapshot: %w", err)
	}
	if err := a.graphStore.Save(graphPath); err != nil {
		return fmt.Errorf("archive: save graph snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots restores both stores from disk. A missing file at either
// path is not an error; that store is simply left empty.
func (a *Archive) LoadSnapshots(vectorPath, graphPath string) error {
	if err := a.vectorStore.Load(vectorPath); err != nil {
		return fmt.Errorf("archive: load vector snapshot: %w", err)
	}
	if err := a.graphStore.Load(graphPath); err != nil {
		return fmt.Errorf("archive: load graph snapshot: %w", err)
	}
	return nil
}
