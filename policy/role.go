package policy

import "strings"

// Role is the closed set of viewer roles. The zero value is RoleAnonymous.
type Role int

const (
	RoleAnonymous Role = iota
	RoleCitizen
	RoleAuthority
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAnonymous:
		return "anonymous"
	case RoleCitizen:
		return "citizen"
	case RoleAuthority:
		return "authority"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// ParseRole maps a stored role claim onto a Role. Only the three roles a
// profile can hold are accepted; "anonymous" is never a stored claim.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "citizen":
		return RoleCitizen, true
	case "authority":
		return RoleAuthority, true
	case "admin":
		return RoleAdmin, true
	}
	return RoleAnonymous, false
}

// Viewer is the acting identity for one request.
type Viewer struct {
	UserID string
	Role   Role
}

// Anonymous returns the viewer used when no identity is present.
func Anonymous() Viewer {
	return Viewer{Role: RoleAnonymous}
}

// NewViewer builds a viewer for an authenticated identity.
func NewViewer(userID string, role Role) Viewer {
	if userID == "" {
		return Anonymous()
	}
	return Viewer{UserID: userID, Role: role}
}

// IsAnonymous reports whether the viewer carries no identity.
func (v Viewer) IsAnonymous() bool {
	return v.UserID == ""
}
