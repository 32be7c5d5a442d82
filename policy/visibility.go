package policy

import "civicconnect-be/models"

// CanSeeContactInfo reports whether v may see the reporter's contact info
// on issue: owners always can, authorities and admins always can, anonymous
// viewers never can.
func CanSeeContactInfo(v Viewer, issue *models.Issue) bool {
	if v.IsAnonymous() {
		return false
	}
	if v.UserID == issue.UserID {
		return true
	}
	switch v.Role {
	case RoleAuthority, RoleAdmin:
		return true
	}
	return false
}

// Project returns the copy of issue that v is allowed to see.
func Project(v Viewer, issue models.Issue) models.Issue {
	if !CanSeeContactInfo(v, &issue) {
		issue.ContactInfo = nil
	}
	return issue
}

// ProjectAll projects every issue for v. The input slice is not modified.
func ProjectAll(v Viewer, issues []models.Issue) []models.Issue {
	out := make([]models.Issue, len(issues))
	for i := range issues {
		out[i] = Project(v, issues[i])
	}
	return out
}
