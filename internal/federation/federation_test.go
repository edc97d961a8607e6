package federation

import (
	"testing"

	"github.com/kittclouds/cortex/internal/usercontext"
	"github.com/kittclouds/cortex/internal/vectorstore"
)

func TestScopeFiltering(t *testing.T) {
	uc := usercontext.UserContext{UserID: "user_1"}
	pred := BuildPredicate(uc)

	mine := &vectorstore.Thought{Scope: vectorstore.ScopeUser, ScopeID: "user_1"}
	theirs := &vectorstore.Thought{Scope: vectorstore.ScopeUser, ScopeID: "user_2"}

	if !pred(mine) {
		t.Error("expected own USER-scoped thought to be admitted")
	}
	if pred(theirs) {
		t.Error("expected other user's USER-scoped thought to be rejected")
	}
}

func TestDeptProjectClientMembership(t *testing.T) {
	uc := usercontext.UserContext{
		UserID:     "u1",
		DeptIDs:    []string{"dept_a"},
		ProjectIDs: []string{"apollo"},
		ClientIDs:  []string{"acme"},
	}
	pred := BuildPredicate(uc)

	cases := []struct {
		name string
		t    *vectorstore.Thought
		want bool
	}{
		{"in dept", &vectorstore.Thought{Scope: vectorstore.ScopeDepartment, ScopeID: "dept_a"}, true},
		{"not in dept", &vectorstore.Thought{Scope: vectorstore.ScopeDepartment, ScopeID: "dept_b"}, false},
		{"in project", &vectorstore.Thought{Scope: vectorstore.ScopeProject, ScopeID: "apollo"}, true},
		{"not in project", &vectorstore.Thought{Scope: vectorstore.ScopeProject, ScopeID: "other"}, false},
		{"in client", &vectorstore.Thought{Scope: vectorstore.ScopeClient, ScopeID: "acme"}, true},
		{"not in client", &vectorstore.Thought{Scope: vectorstore.ScopeClient, ScopeID: "other"}, false},
	}
	for _, c := range cases {
		if got := pred(c.t); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRBACEmptyRolesIsOpen(t *testing.T) {
	uc := usercontext.UserContext{UserID: "u1"}
	pred := BuildPredicate(uc)
	th := &vectorstore.Thought{Scope: vectorstore.ScopeUser, ScopeID: "u1"}
	if !pred(th) {
		t.Fatal("expected empty access_roles to be open to scope-admitted thoughts")
	}
}

func TestRBACAnyOfSemantics(t *testing.T) {
	uc := usercontext.UserContext{UserID: "u1", Roles: []string{"editor"}}
	pred := BuildPredicate(uc)

	admitted := &vectorstore.Thought{Scope: vectorstore.ScopeUser, ScopeID: "u1", AccessRoles: []string{"admin", "editor"}}
	rejected := &vectorstore.Thought{Scope: vectorstore.ScopeUser, ScopeID: "u1", AccessRoles: []string{"admin"}}

	if !pred(admitted) {
		t.Error("expected role intersection to admit the thought")
	}
	if pred(rejected) {
		t.Error("expected no role intersection to reject the thought")
	}
}

func TestFederationSafety(t *testing.T) {
	uc := usercontext.UserContext{UserID: "u1", ProjectIDs: []string{"apollo"}}
	pred := BuildPredicate(uc)

	rejected := &vectorstore.Thought{Scope: vectorstore.ScopeProject, ScopeID: "other-project"}
	if pred(rejected) {
		t.Fatal("predicate must reject a thought outside every scope membership")
	}
}
