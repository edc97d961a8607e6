// Package vectorstore is an append-only store of "thoughts" — cached
// prompt/response pairs with their embeddings — searched by brute-force
// cosine similarity. It generalizes an in-memory structured-row cache
// concept into one holding thought vectors instead, and is grounded
// directly on coreason_archive.vector_store.VectorStore from
// original_source: a plain Go slice/map scan rather than a SQL extension,
// so the exact cosine formula, clamping, and zero-norm handling stay
// verifiable in pure Go.
package vectorstore

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scope is the containment level that governs a thought's visibility and
// decay rate.
type Scope string

const (
	ScopeUser       Scope = "USER"
	ScopeProject    Scope = "PROJECT"
	ScopeDepartment Scope = "DEPARTMENT"
	ScopeClient     Scope = "CLIENT"
)

// ErrDimensionMismatch is returned by Add when a thought's vector length
// disagrees with the dimensionality fixed by the store's first insert.
var ErrDimensionMismatch = errors.New("vectorstore: dimension mismatch")

// Thought is the fundamental cached record: a prompt/response pair with its
// embedding, extracted entities, and access metadata.
type Thought struct {
	ID             string
	Vector         []float64
	Entities       []string
	Scope          Scope
	ScopeID        string
	PromptText     string
	ReasoningTrace string
	FinalResponse  string
	SourceURNs     []string
	CreatedAt      time.Time
	TTLSeconds     int64
	AccessRoles    []string
	IsStale        bool
}

func (t *Thought) clone() *Thought {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Vector = append([]float64(nil), t.Vector...)
	cp.Entities = append([]string(nil), t.Entities...)
	cp.SourceURNs = append([]string(nil), t.SourceURNs...)
	cp.AccessRoles = append([]string(nil), t.AccessRoles...)
	return &cp
}

// Match pairs a retrieved thought with its cosine similarity score.
type Match struct {
	Thought *Thought
	Score   float64
}

// Store is a mutex-guarded, in-process vector index. The zero value is not
// usable; construct with New.
type Store struct {
	mu       sync.RWMutex
	dim      int
	thoughts map[string]*Thought
	order    []string
	logger   *zap.Logger
}

// New creates an empty vector store.
func New() *Store {
	return &Store{
		thoughts: make(map[string]*Thought),
		logger:   zap.NewNop(),
	}
}

// SetLogger attaches a structured logger used for non-fatal notices (such
// as a missing snapshot file on Load). A nil logger is ignored.
func (s *Store) SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// Add appends a thought. The first call establishes the store's vector
// dimensionality; subsequent calls with a different length fail with
// ErrDimensionMismatch.
func (s *Store) Add(t *Thought) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 && len(s.thoughts) == 0 {
		s.dim = len(t.Vector)
	} else if len(t.Vector) != s.dim {
		return fmt.Errorf("%w: have %d, want %d", ErrDimensionMismatch, len(t.Vector), s.dim)
	}

	stored := t.clone()
	s.thoughts[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return nil
}

const tinyNorm = 1e-10

func vecNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Search performs an exact, brute-force cosine similarity scan over every
// stored thought. Results are stable-sorted by score descending and
// truncated to limit. A zero-norm query or limit <= 0 returns no results.
func (s *Store) Search(query []float64, limit int, minScore float64) []Match {
	if limit <= 0 {
		return nil
	}
	qNorm := vecNorm(query)
	if qNorm == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.order))
	for _, id := range s.order {
		t := s.thoughts[id]
		vNorm := vecNorm(t.Vector)
		if vNorm == 0 {
			vNorm = tinyNorm
		}
		score := clamp(dot(query, t.Vector)/(qNorm*vNorm), -1, 1)
		if score < minScore {
			continue
		}
		matches = append(matches, Match{Thought: t.clone(), Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Delete removes a thought by id, reporting whether one was found.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.thoughts[id]; !ok {
		return false
	}
	delete(s.thoughts, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the thought with the given id.
func (s *Store) Get(id string) (*Thought, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.thoughts[id]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

// GetByScope returns, in insertion order, every thought matching both the
// scope and scope id.
func (s *Store) GetByScope(scope Scope, scopeID string) []*Thought {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Thought
	for _, id := range s.order {
		t := s.thoughts[id]
		if t.Scope == scope && t.ScopeID == scopeID {
			out = append(out, t.clone())
		}
	}
	return out
}

// Replace overwrites the stored thought with the given id, preserving its
// position in insertion order. Reports whether a thought with that id
// existed. Used by callers that need to adjust a thought's metadata (e.g.
// relocating its CreatedAt) without re-running the ingestion pipeline.
func (s *Store) Replace(t *Thought) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.thoughts[t.ID]; !ok {
		return false
	}
	s.thoughts[t.ID] = t.clone()
	return true
}

// SetEntities overwrites a thought's extracted entities, used by background
// extraction to write back its result. Reports whether the thought exists.
func (s *Store) SetEntities(id string, entities []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.thoughts[id]
	if !ok {
		return false
	}
	t.Entities = append([]string(nil), entities...)
	return true
}

// MarkStaleByURN flips IsStale to true for every thought whose SourceURNs
// contains urn and is not already stale, returning the number flipped.
func (s *Store) MarkStaleByURN(urn string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range s.order {
		t := s.thoughts[id]
		if t.IsStale {
			continue
		}
		for _, u := range t.SourceURNs {
			if u == urn {
				t.IsStale = true
				count++
				break
			}
		}
	}
	return count
}

// Len reports the number of thoughts currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.thoughts)
}
