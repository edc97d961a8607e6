// Package graphstore is a typed directed multigraph of canonical
// "Type:Value" entity nodes connected by labelled edges, used for 1-hop
// structural recall. It generalizes an in-memory entities/edges table
// design (app-level-integrity, no-FK, :memory:-default shape) to an
// arbitrary entity/relation schema instead of a fixed narrative-entity
// column set. A single-edge-per-pair directed graph silently overwrites
// an edge's relation on a second add_relationship call between the same
// pair; this store keys edges on the full (source, target, relation)
// triple so distinct relation labels between the same two nodes coexist.
package graphstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	"go.uber.org/zap"
)

// Direction selects which edges get_related_entities considers relative to
// the queried node.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ErrInvalidEntityFormat is returned when a canonical entity string has no
// colon, an empty type, or an empty value.
var ErrInvalidEntityFormat = errors.New("graphstore: invalid entity format")

// RelatedEntity is one neighbor returned by GetRelatedEntities.
type RelatedEntity struct {
	Neighbor string
	Relation string
}

// NodeStats is read-only bookkeeping outside the retrieval path: how many
// times an entity was referenced, and which thought first introduced it.
type NodeStats struct {
	TotalMentions      int
	FirstSeenThoughtID string
}

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	canonical TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	value TEXT NOT NULL,
	total_mentions INTEGER NOT NULL DEFAULT 0,
	first_seen_thought TEXT,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	relation TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (source, target, relation)
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source, relation);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target, relation);
`

// Store is a SQLite-backed entity/edge graph, guarded by a mutex around
// its *sql.DB.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *zap.Logger
}

// New opens an in-memory graph store.
func New() (*Store, error) {
	return NewWithDSN(":memory:")
}

// NewWithDSN opens a graph store against the given SQLite DSN.
func NewWithDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("graphstore: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("graphstore: schema: %w", err)
	}
	return &Store{db: db, logger: zap.NewNop()}, nil
}

// SetLogger attaches a structured logger used for non-fatal notices. A nil
// logger is ignored.
func (s *Store) SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SplitCanonical parses an entity string at its first colon. It fails with
// ErrInvalidEntityFormat if there is no colon, the type is empty, or the
// value is empty. Values may themselves contain colons.
func SplitCanonical(s string) (typ, value string, err error) {
	idx := strings.IndexByte(s, ':')
	if idx <= 0 || idx == len(s)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidEntityFormat, s)
	}
	return s[:idx], s[idx+1:], nil
}

// AddEntity parses and adds a single canonical entity node. Idempotent in
// effect: repeated calls leave the node set unchanged (mention bookkeeping
// still increments).
func (s *Store) AddEntity(canonical string) error {
	typ, val, err := SplitCanonical(canonical)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEntityLocked(canonical, typ, val, "")
}

func (s *Store) addEntityLocked(canonical, typ, val, firstThoughtID string) error {
	_, err := s.db.Exec(`
		INSERT INTO entities (canonical, type, value, total_mentions, first_seen_thought, created_at)
		VALUES (?, ?, ?, 1, NULLIF(?, ''), ?)
		ON CONFLICT(canonical) DO UPDATE SET total_mentions = total_mentions + 1
	`, canonical, typ, val, firstThoughtID, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("graphstore: add entity %q: %w", canonical, err)
	}
	return nil
}

// AddRelationship lazily creates both endpoint nodes and inserts the edge
// (source, target, relation). Re-adding an existing edge is a no-op.
func (s *Store) AddRelationship(src, tgt, relation string) error {
	return s.AddRelationshipWithProvenance(src, tgt, relation, "")
}

// AddRelationshipWithProvenance is AddRelationship plus the id of the
// thought responsible for introducing the nodes, recorded in NodeStats.
func (s *Store) AddRelationshipWithProvenance(src, tgt, relation, thoughtID string) error {
	srcType, srcVal, err := SplitCanonical(src)
	if err != nil {
		return err
	}
	tgtType, tgtVal, err := SplitCanonical(tgt)
	if err != nil {
		return err
	}
	if relation == "" {
		return fmt.Errorf("%w: empty relation label", ErrInvalidEntityFormat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addEntityLocked(src, srcType, srcVal, thoughtID); err != nil {
		return err
	}
	if err := s.addEntityLocked(tgt, tgtType, tgtVal, thoughtID); err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO edges (source, target, relation, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source, target, relation) DO NOTHING
	`, src, tgt, relation, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("graphstore: add edge %s -[%s]-> %s: %w", src, relation, tgt, err)
	}
	return nil
}

// GetRelatedEntities returns the neighbors of entity, optionally filtered
// to an exact relation label, in the requested direction. Unknown entities
// return an empty slice, never an error. direction defaults to outgoing.
// The both direction deduplicates a (neighbor, relation) pair that is
// reachable via both an outgoing and an incoming edge.
func (s *Store) GetRelatedEntities(entity string, relation string, direction Direction) ([]RelatedEntity, error) {
	if direction == "" {
		direction = DirectionOutgoing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct{ neighbor, relation string }
	seen := make(map[key]bool)
	var out []RelatedEntity
	add := func(neighbor, rel string) {
		k := key{neighbor, rel}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, RelatedEntity{Neighbor: neighbor, Relation: rel})
	}

	if direction == DirectionOutgoing || direction == DirectionBoth {
		rows, err := s.queryDirectionLocked(entity, relation, true)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			add(r.Neighbor, r.Relation)
		}
	}
	if direction == DirectionIncoming || direction == DirectionBoth {
		rows, err := s.queryDirectionLocked(entity, relation, false)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			add(r.Neighbor, r.Relation)
		}
	}
	return out, nil
}

func (s *Store) queryDirectionLocked(entity, relation string, outgoing bool) ([]RelatedEntity, error) {
	anchorCol, neighborCol := "source", "target"
	if !outgoing {
		anchorCol, neighborCol = "target", "source"
	}

	query := fmt.Sprintf(`SELECT %s, relation FROM edges WHERE %s = ?`, neighborCol, anchorCol)
	args := []any{entity}
	if relation != "" {
		query += ` AND relation = ?`
		args = append(args, relation)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("graphstore: query related entities: %w", err)
	}
	defer rows.Close()

	var out []RelatedEntity
	for rows.Next() {
		var re RelatedEntity
		if err := rows.Scan(&re.Neighbor, &re.Relation); err != nil {
			return nil, fmt.Errorf("graphstore: scan related entity: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

// NodeStats returns the mention count and first-seen thought id for a
// canonical entity, or ok=false if it has never been referenced.
func (s *Store) NodeStats(canonical string) (stats NodeStats, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first sql.NullString
	err = s.db.QueryRow(
		`SELECT total_mentions, first_seen_thought FROM entities WHERE canonical = ?`,
		canonical,
	).Scan(&stats.TotalMentions, &first)
	if errors.Is(err, sql.ErrNoRows) {
		return NodeStats{}, false, nil
	}
	if err != nil {
		return NodeStats{}, false, fmt.Errorf("graphstore: node stats: %w", err)
	}
	if first.Valid {
		stats.FirstSeenThoughtID = first.String
	}
	return stats, true, nil
}
