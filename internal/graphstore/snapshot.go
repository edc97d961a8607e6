package graphstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// node-link format, matching networkx.readwrite.json_graph.node_link_data
// as used by coreason_archive.graph_store.GraphStore.save.
type nodeLinkNode struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type nodeLinkEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

type nodeLinkDoc struct {
	Directed bool           `json:"directed"`
	Nodes    []nodeLinkNode `json:"nodes"`
	Links    []nodeLinkEdge `json:"links"`
}

// Save writes a node-link JSON snapshot of every entity and edge.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	doc, err := s.exportLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("graphstore: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("graphstore: write snapshot: %w", err)
	}
	return nil
}

func (s *Store) exportLocked() (*nodeLinkDoc, error) {
	doc := &nodeLinkDoc{Directed: true}

	nodeRows, err := s.db.Query(`SELECT canonical, type, value FROM entities`)
	if err != nil {
		return nil, fmt.Errorf("graphstore: export entities: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var n nodeLinkNode
		if err := nodeRows.Scan(&n.ID, &n.Type, &n.Value); err != nil {
			return nil, fmt.Errorf("graphstore: scan entity: %w", err)
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.db.Query(`SELECT source, target, relation FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("graphstore: export edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e nodeLinkEdge
		if err := edgeRows.Scan(&e.Source, &e.Target, &e.Relation); err != nil {
			return nil, fmt.Errorf("graphstore: scan edge: %w", err)
		}
		doc.Links = append(doc.Links, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Load replaces the graph's contents with the node-link snapshot at path.
// A missing file is not an error — it logs a warning and leaves the graph
// empty, matching coreason_archive.graph_store.GraphStore.load.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		logger := s.logger
		s.mu.Unlock()
		logger.Warn("graphstore snapshot not found, starting empty", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("graphstore: read snapshot: %w", err)
	}

	var doc nodeLinkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("graphstore: parse snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM edges`); err != nil {
		return fmt.Errorf("graphstore: clear edges: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM entities`); err != nil {
		return fmt.Errorf("graphstore: clear entities: %w", err)
	}

	now := time.Now().UTC().Unix()
	for _, n := range doc.Nodes {
		canonical := n.Type + ":" + n.Value
		if n.ID != "" {
			canonical = n.ID
		}
		_, err := s.db.Exec(`
			INSERT INTO entities (canonical, type, value, total_mentions, first_seen_thought, created_at)
			VALUES (?, ?, ?, 0, NULL, ?)
			ON CONFLICT(canonical) DO NOTHING
		`, canonical, n.Type, n.Value, now)
		if err != nil {
			return fmt.Errorf("graphstore: restore entity %q: %w", canonical, err)
		}
	}
	for _, e := range doc.Links {
		_, err := s.db.Exec(`
			INSERT INTO edges (source, target, relation, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(source, target, relation) DO NOTHING
		`, e.Source, e.Target, e.Relation, now)
		if err != nil {
			return fmt.Errorf("graphstore: restore edge %s-%s[%s]: %w", e.Source, e.Target, e.Relation, err)
		}
	}
	return nil
}
