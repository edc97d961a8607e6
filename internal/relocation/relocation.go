// Package relocation is RelocationManager: sanitizes a user's personal
// memory when they move between departments, grounded on
// coreason_archive.relocation.RelocationManager from original_source.
package relocation

import (
	"github.com/kittclouds/cortex/internal/graphstore"
	"github.com/kittclouds/cortex/internal/vectorstore"
)

// Manager deletes USER-scoped thoughts whose entities tie them, via a
// BELONGS_TO edge, to a department the user is leaving. The zero value is
// not usable; construct with New.
type Manager struct {
	vectorStore *vectorstore.Store
	graphStore  *graphstore.Store
}

// New constructs a Manager over an Archive's own stores.
func New(vs *vectorstore.Store, gs *graphstore.Store) *Manager {
	return &Manager{vectorStore: vs, graphStore: gs}
}

// OnDeptTransfer deletes every USER-scoped thought belonging to userID
// whose entities link, via an outgoing BELONGS_TO edge, to
// Department:oldDeptID. newDeptID is accepted for symmetry with the
// transfer event but does not affect which thoughts are deleted — arrival
// in the new department never contaminates existing memory.
// PROJECT/DEPARTMENT/CLIENT-scoped thoughts are never examined: they
// belong to their scope container, not to the user. Contamination is
// checked strictly 1-hop; a thought whose entity reaches the old
// department only via an intermediate entity is retained.
func (m *Manager) OnDeptTransfer(userID, oldDeptID, newDeptID string) (int, error) {
	oldDeptNode := "Department:" + oldDeptID

	thoughts := m.vectorStore.GetByScope(vectorstore.ScopeUser, userID)
	deleted := 0
	for _, t := range thoughts {
		contaminated, err := m.isContaminated(t, oldDeptNode)
		if err != nil {
			return deleted, err
		}
		if contaminated {
			m.vectorStore.Delete(t.ID)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Manager) isContaminated(t *vectorstore.Thought, oldDeptNode string) (bool, error) {
	for _, e := range t.Entities {
		neighbors, err := m.graphStore.GetRelatedEntities(e, "BELONGS_TO", graphstore.DirectionOutgoing)
		if err != nil {
			return false, err
		}
		for _, n := range neighbors {
			if n.Neighbor == oldDeptNode {
				return true, nil
			}
		}
	}
	return false, nil
}
