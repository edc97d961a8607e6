// Package usercontext defines the security context the archive is queried
// under, mirroring coreason_archive.federation.UserContext from the
// original system (user id, group memberships, RBAC roles) with separate
// DeptIDs/ProjectIDs/ClientIDs fields rather than a merged "groups" list.
package usercontext

// UserContext carries the identity and memberships of the caller making a
// request. It has no behavior of its own; FederationBroker interprets it.
type UserContext struct {
	UserID     string
	DeptIDs    []string
	ProjectIDs []string
	ClientIDs  []string
	Roles      []string
}
