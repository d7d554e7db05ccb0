// Package rbac holds the static role-to-module permission matrix for
// admin accounts. The matrix is immutable configuration; lookups are
// pure and safe on every request.
package rbac

import "primex/api/internal/models"

// Permissions maps a capability key to whether the role may use it.
type Permissions map[string]bool

var permissions = map[models.AdminRole]Permissions{
	models.AdminRoleSuperAdmin: {
		"dashboard":        true,
		"users":            true,
		"subscriptions":    true,
		"codes":            true,
		"channels":         true,
		"categories":       true,
		"servers":          true,
		"plans":            true,
		"settings":         true,
		"security":         true,
		"notifications":    true,
		"api_settings":     true,
		"activity_logs":    true,
		"admin_management": true,
	},
	models.AdminRoleAdmin: {
		"dashboard":        true,
		"users":            true,
		"subscriptions":    true,
		"codes":            true,
		"channels":         true,
		"categories":       true,
		"servers":          true,
		"plans":            true,
		"settings":         false,
		"security":         false,
		"notifications":    true,
		"api_settings":     false,
		"activity_logs":    true,
		"admin_management": false,
	},
	models.AdminRoleModerator: {
		"dashboard":        true,
		"users":            true,
		"subscriptions":    true,
		"codes":            false,
		"channels":         true,
		"categories":       true,
		"servers":          false,
		"plans":            false,
		"settings":         false,
		"security":         false,
		"notifications":    true,
		"api_settings":     false,
		"activity_logs":    false,
		"admin_management": false,
	},
	models.AdminRoleCodesSeller: {
		"dashboard":        true,
		"users":            false,
		"subscriptions":    false,
		"codes":            true,
		"channels":         false,
		"categories":       false,
		"servers":          false,
		"plans":            false,
		"settings":         false,
		"security":         false,
		"notifications":    false,
		"api_settings":     false,
		"activity_logs":    false,
		"admin_management": false,
	},
}

// moduleAliases translates externally visible module names to matrix
// keys where the two differ.
var moduleAliases = map[string]string{
	"api-settings":     "api_settings",
	"activity-logs":    "activity_logs",
	"admin-management": "admin_management",
}

// NormalizeRole substitutes the least-privileged built-in role when no
// role is set. Unrecognized role strings pass through unchanged and
// fail the matrix lookup.
func NormalizeRole(role models.AdminRole) models.AdminRole {
	if role == "" {
		return models.AdminRoleModerator
	}
	return role
}

// HasPermission reports whether role may access module. Unknown modules
// deny.
func HasPermission(role models.AdminRole, module string) bool {
	perms, ok := permissions[NormalizeRole(role)]
	if !ok {
		return false
	}

	key := module
	if alias, ok := moduleAliases[module]; ok {
		key = alias
	}
	return perms[key]
}

// RolePermissions returns a copy of the full permission set for a role,
// for UI hinting. It carries no enforcement implication.
func RolePermissions(role models.AdminRole) Permissions {
	perms, ok := permissions[NormalizeRole(role)]
	if !ok {
		return Permissions{}
	}

	out := make(Permissions, len(perms))
	for k, v := range perms {
		out[k] = v
	}
	return out
}
