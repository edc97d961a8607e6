package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// wireThought is the JSON-on-disk shape of a Thought, matching
// coreason_archive's pydantic model_dump_json output: scope serializes to
// its textual enum value, with DEPARTMENT spelled "DEPT".
type wireThought struct {
	ID             string    `json:"id"`
	Vector         []float64 `json:"vector"`
	Entities       []string  `json:"entities"`
	Scope          string    `json:"scope"`
	ScopeID        string    `json:"scope_id"`
	PromptText     string    `json:"prompt_text"`
	ReasoningTrace string    `json:"reasoning_trace"`
	FinalResponse  string    `json:"final_response"`
	SourceURNs     []string  `json:"source_urns"`
	CreatedAt      time.Time `json:"created_at"`
	TTLSeconds     int64     `json:"ttl_seconds"`
	AccessRoles    []string  `json:"access_roles"`
	IsStale        bool      `json:"is_stale"`
}

func scopeToWire(s Scope) string {
	if s == ScopeDepartment {
		return "DEPT"
	}
	return string(s)
}

func scopeFromWire(w string) Scope {
	if w == "DEPT" {
		return ScopeDepartment
	}
	return Scope(w)
}

// Save writes a full JSON snapshot of every stored thought to path.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	out := make([]wireThought, 0, len(s.order))
	for _, id := range s.order {
		t := s.thoughts[id]
		out = append(out, wireThought{
			ID:             t.ID,
			Vector:         t.Vector,
			Entities:       t.Entities,
			Scope:          scopeToWire(t.Scope),
			ScopeID:        t.ScopeID,
			PromptText:     t.PromptText,
			ReasoningTrace: t.ReasoningTrace,
			FinalResponse:  t.FinalResponse,
			SourceURNs:     t.SourceURNs,
			CreatedAt:      t.CreatedAt,
			TTLSeconds:     t.TTLSeconds,
			AccessRoles:    t.AccessRoles,
			IsStale:        t.IsStale,
		})
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("vectorstore: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("vectorstore: write snapshot: %w", err)
	}
	return nil
}

// Load replaces the store's contents with the snapshot at path. A missing
// file is not an error — it logs a warning and leaves the store empty, as
// coreason_archive.vector_store.VectorStore.load does.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.RLock()
		logger := s.logger
		s.mu.RUnlock()
		logger.Warn("vectorstore snapshot not found, starting empty", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("vectorstore: read snapshot: %w", err)
	}

	var in []wireThought
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("vectorstore: parse snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.thoughts = make(map[string]*Thought, len(in))
	s.order = s.order[:0]
	s.dim = 0
	for _, w := range in {
		t := &Thought{
			ID:             w.ID,
			Vector:         w.Vector,
			Entities:       w.Entities,
			Scope:          scopeFromWire(w.Scope),
			ScopeID:        w.ScopeID,
			PromptText:     w.PromptText,
			ReasoningTrace: w.ReasoningTrace,
			FinalResponse:  w.FinalResponse,
			SourceURNs:     w.SourceURNs,
			CreatedAt:      w.CreatedAt,
			TTLSeconds:     w.TTLSeconds,
			AccessRoles:    w.AccessRoles,
			IsStale:        w.IsStale,
		}
		if s.dim == 0 {
			s.dim = len(t.Vector)
		}
		s.thoughts[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return nil
}
