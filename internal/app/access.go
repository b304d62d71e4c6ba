package app

import "greenlaunch/pkg/domain"

// CanAccessProject is the single read/review access rule for projects.
// Admin and business support see everything; a mentor sees projects that are
// unassigned or assigned to them; an entrepreneur sees only their own.
func CanAccessProject(role domain.Role, uid string, project domain.Project) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleBusinessSupport:
		return true
	case domain.RoleMentor:
		return project.MentorID == "" || project.MentorID == uid
	default:
		return project.EntrepreneurID == uid
	}
}
