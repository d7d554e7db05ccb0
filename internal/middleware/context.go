package middleware

import (
	"github.com/gin-gonic/gin"

	"primex/api/internal/models"
	"primex/api/internal/rbac"
)

const (
	ctxKeyUser        = "current_user"
	ctxKeyAdmin       = "current_admin"
	ctxKeyPermissions = "admin_permissions"
)

// CurrentUser returns the subscriber resolved by the auth middleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, ok := c.Get(ctxKeyUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// CurrentAdmin returns the admin resolved by the admin auth middleware.
func CurrentAdmin(c *gin.Context) (models.Admin, bool) {
	val, ok := c.Get(ctxKeyAdmin)
	if !ok {
		return models.Admin{}, false
	}
	admin, ok := val.(models.Admin)
	return admin, ok
}

// AdminPermissions returns the permission set attached alongside the
// resolved admin.
func AdminPermissions(c *gin.Context) rbac.Permissions {
	val, ok := c.Get(ctxKeyPermissions)
	if !ok {
		return rbac.Permissions{}
	}
	perms, ok := val.(rbac.Permissions)
	if !ok {
		return rbac.Permissions{}
	}
	return perms
}
