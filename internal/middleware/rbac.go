package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"primex/api/internal/rbac"
	"primex/api/internal/response"
)

// RequireModule gates an admin route on the static permission matrix.
func RequireModule(module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		if !ok {
			response.AbortFail(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		if !rbac.HasPermission(admin.Role, module) {
			response.AbortFail(c, http.StatusForbidden, "Access denied: Insufficient permissions")
			return
		}

		c.Next()
	}
}
