// Package federation is FederationBroker: a pure function building an
// access predicate over a thought from a caller's UserContext, grounded on
// coreason_archive.federation.FederationBroker from original_source. RBAC
// semantics are fixed as "empty access_roles = open; non-empty = any-of",
// resolving an ambiguity original_source's own federation.py left as an
// unresolved ALL-vs-ANY comment trail.
package federation

import (
	"github.com/kittclouds/cortex/internal/usercontext"
	"github.com/kittclouds/cortex/internal/vectorstore"
)

// Predicate reports whether a thought is visible to the user context it
// was built from.
type Predicate func(*vectorstore.Thought) bool

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}

// BuildPredicate returns the access predicate for uc. A thought is admitted
// iff its scope container is one the user belongs to, and — if the thought
// restricts access_roles — the user holds at least one of them.
func BuildPredicate(uc usercontext.UserContext) Predicate {
	return func(t *vectorstore.Thought) bool {
		if !scopeAdmits(uc, t) {
			return false
		}
		if len(t.AccessRoles) == 0 {
			return true
		}
		return intersects(t.AccessRoles, uc.Roles)
	}
}

func scopeAdmits(uc usercontext.UserContext, t *vectorstore.Thought) bool {
	switch t.Scope {
	case vectorstore.ScopeUser:
		return t.ScopeID == uc.UserID
	case vectorstore.ScopeDepartment:
		return contains(uc.DeptIDs, t.ScopeID)
	case vectorstore.ScopeProject:
		return contains(uc.ProjectIDs, t.ScopeID)
	case vectorstore.ScopeClient:
		return contains(uc.ClientIDs, t.ScopeID)
	default:
		return false
	}
}
