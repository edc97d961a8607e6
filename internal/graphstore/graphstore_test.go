package graphstore

import (
	"path/filepath"
	"testing"
)

func mustNew(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("failed to create graph store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSplitCanonical(t *testing.T) {
	cases := []struct {
		in      string
		typ     string
		val     string
		wantErr bool
	}{
		{"Project:Apollo", "Project", "Apollo", false},
		{"User:u:with:colons", "User", "u:with:colons", false},
		{"NoColon", "", "", true},
		{":EmptyType", "", "", true},
		{"EmptyValue:", "", "", true},
	}
	for _, c := range cases {
		typ, val, err := SplitCanonical(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got none", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", c.in, err)
			continue
		}
		if typ != c.typ || val != c.val {
			t.Errorf("%q: got (%q, %q), want (%q, %q)", c.in, typ, val, c.typ, c.val)
		}
	}
}

func TestAddEntityInvalidFormat(t *testing.T) {
	s := mustNew(t)
	if err := s.AddEntity("bad-format"); err == nil {
		t.Fatal("expected InvalidEntityFormat error")
	}
}

func TestAddRelationshipLazyCreatesNodesAndIsIdempotent(t *testing.T) {
	s := mustNew(t)
	if err := s.AddRelationship("User:alice", "Thought:1", "CREATED"); err != nil {
		t.Fatalf("add relationship: %v", err)
	}
	// Re-adding is a no-op, not an error.
	if err := s.AddRelationship("User:alice", "Thought:1", "CREATED"); err != nil {
		t.Fatalf("re-add relationship: %v", err)
	}

	neighbors, err := s.GetRelatedEntities("User:alice", "", DirectionOutgoing)
	if err != nil {
		t.Fatalf("get related: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].Neighbor != "Thought:1" || neighbors[0].Relation != "CREATED" {
		t.Fatalf("unexpected neighbors: %+v", neighbors)
	}
}

func TestGetRelatedEntitiesUnknownEntityIsEmpty(t *testing.T) {
	s := mustNew(t)
	got, err := s.GetRelatedEntities("Project:Ghost", "", DirectionOutgoing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestGetRelatedEntitiesBothDirectionDeduplicates(t *testing.T) {
	s := mustNew(t)
	if err := s.AddRelationship("Concept:A", "Concept:B", "RELATED_TO"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddRelationship("Concept:B", "Concept:A", "RELATED_TO"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := s.GetRelatedEntities("Concept:A", "RELATED_TO", DirectionBoth)
	if err != nil {
		t.Fatalf("get related: %v", err)
	}
	if len(got) != 1 || got[0].Neighbor != "Concept:B" {
		t.Fatalf("expected single deduplicated neighbor, got %+v", got)
	}
}

func TestRelationFilterExactMatch(t *testing.T) {
	s := mustNew(t)
	if err := s.AddRelationship("Project:X", "Department:A", "BELONGS_TO"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddRelationship("Project:X", "Concept:Y", "RELATED_TO"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := s.GetRelatedEntities("Project:X", "BELONGS_TO", DirectionOutgoing)
	if err != nil {
		t.Fatalf("get related: %v", err)
	}
	if len(got) != 1 || got[0].Neighbor != "Department:A" {
		t.Fatalf("expected only BELONGS_TO neighbor, got %+v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := mustNew(t)
	if err := s.AddRelationship("Project:X", "Department:A", "BELONGS_TO"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddEntity("Concept:Orphan"); err != nil {
		t.Fatalf("add entity: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := mustNew(t)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := loaded.GetRelatedEntities("Project:X", "BELONGS_TO", DirectionOutgoing)
	if err != nil {
		t.Fatalf("get related after load: %v", err)
	}
	if len(got) != 1 || got[0].Neighbor != "Department:A" {
		t.Fatalf("edge did not round-trip: %+v", got)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	s := mustNew(t)
	if err := s.Load(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("expected no error for missing snapshot, got %v", err)
	}
}

func TestNodeStatsTracksMentions(t *testing.T) {
	s := mustNew(t)
	if err := s.AddRelationshipWithProvenance("User:alice", "Thought:1", "CREATED", "thought-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	stats, ok, err := s.NodeStats("Thought:1")
	if err != nil {
		t.Fatalf("node stats: %v", err)
	}
	if !ok {
		t.Fatal("expected node stats to exist")
	}
	if stats.FirstSeenThoughtID != "thought-1" {
		t.Fatalf("expected provenance to be recorded, got %+v", stats)
	}
	if stats.TotalMentions < 1 {
		t.Fatalf("expected at least one mention, got %d", stats.TotalMentions)
	}
}
