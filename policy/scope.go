package policy

// Scope is the subset of issues a viewer's list view may retrieve.
type Scope int

const (
	// ScopePublic is every issue, projected for an anonymous viewer.
	ScopePublic Scope = iota
	// ScopeOwned is only the issues the viewer reported.
	ScopeOwned
	// ScopeAll is every issue, with triage rights.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopeOwned:
		return "owned"
	case ScopeAll:
		return "all"
	}
	return "unknown"
}

// SelectScope chooses exactly one scope for v. Identities with a role this
// function does not know get ScopeOwned.
func SelectScope(v Viewer) Scope {
	if v.IsAnonymous() {
		return ScopePublic
	}
	switch v.Role {
	case RoleAuthority, RoleAdmin:
		return ScopeAll
	case RoleCitizen:
		return ScopeOwned
	default:
		return ScopeOwned
	}
}

// CanManage reports whether v may change status, priority and assignment.
func CanManage(v Viewer) bool {
	return SelectScope(v) == ScopeAll
}
