package user

type Permission string

const (
	// Permission requests
	PermissionRequestCreateOwn Permission = "request.create_own"
	PermissionRequestCreate    Permission = "request.create"
	PermissionRequestViewOwn   Permission = "request.view_own"
	PermissionRequestViewAll   Permission = "request.view_all"
	PermissionRequestDecide    Permission = "request.decide"

	// Access ledger
	PermissionAccessViewOwn Permission = "access.view_own"
	PermissionAccessViewAll Permission = "access.view_all"
	PermissionAccessRevoke  Permission = "access.revoke"

	// Door scans and history
	PermissionHistoryRecordOwn Permission = "history.record_own"
	PermissionHistoryRecord    Permission = "history.record"
	PermissionHistoryViewOwn   Permission = "history.view_own"
	PermissionHistoryViewAll   Permission = "history.view_all"

	// Doors
	PermissionDoorView   Permission = "door.view"
	PermissionDoorManage Permission = "door.manage"

	// Users
	PermissionUserView   Permission = "user.view"
	PermissionUserManage Permission = "user.manage"

	// Platform
	PermissionCompanyManage Permission = "company.manage"
	PermissionAdminManage   Permission = "admin.manage"

	// Contact messages
	PermissionMessageCreate Permission = "message.create"
	PermissionMessageManage Permission = "message.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionRequestViewAll,
		PermissionRequestDecide,
		PermissionAccessViewAll,
		PermissionAccessRevoke,
		PermissionHistoryViewAll,
		PermissionDoorView,
		PermissionUserView,
		PermissionCompanyManage,
		PermissionAdminManage,
	},
	RoleAdmin: {
		PermissionRequestCreate,
		PermissionRequestViewAll,
		PermissionRequestDecide,
		PermissionAccessViewAll,
		PermissionAccessRevoke,
		PermissionHistoryRecord,
		PermissionHistoryViewAll,
		PermissionDoorView,
		PermissionDoorManage,
		PermissionUserView,
		PermissionUserManage,
		PermissionMessageManage,
	},
	RoleUser: {
		PermissionRequestCreateOwn,
		PermissionRequestViewOwn,
		PermissionAccessViewOwn,
		PermissionHistoryRecordOwn,
		PermissionHistoryViewOwn,
		PermissionDoorView,
		PermissionMessageCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
