package rbac

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	PermissionCreateProject = "project:create"
	PermissionDeleteProject = "project:delete"
	PermissionUpdateProject = "project:update"
	PermissionArchive       = "project:archive"
	PermissionTriggerSweep  = "sweep:trigger"
)

var rolePermissions = map[string][]string{
	RoleMember: {
		PermissionCreateProject,
		PermissionUpdateProject,
		PermissionArchive,
	},
	RoleAdmin: {
		PermissionCreateProject,
		PermissionDeleteProject,
		PermissionUpdateProject,
		PermissionArchive,
		PermissionTriggerSweep,
	},
}

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// PermissionDeniedError indicates the caller lacks a permission. Surfaced to
// users as a message, never as a panic.
type PermissionDeniedError struct {
	MemberID   int
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
