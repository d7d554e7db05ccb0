package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"primex/api/internal/config"
	"primex/api/internal/models"
	"primex/api/internal/rbac"
	"primex/api/internal/repository"
	"primex/api/internal/response"
	"primex/api/internal/security"
)

// UserDirectory resolves subscriber records. Principals are loaded
// fresh on every request so status changes take effect immediately.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// AdminDirectory resolves admin records.
type AdminDirectory interface {
	GetByID(ctx context.Context, id int64) (models.Admin, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Auth verifies a subscriber token and attaches the freshly loaded user
// to the request context.
func Auth(cfg *config.AppConfig, users UserDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := security.ParseAccessToken(bearerToken(c), cfg.Security.JWTSecret)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		user, err := loadUser(c, cfg, users, claims.PrincipalID)
		if err != nil {
			return
		}

		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

// AuthAdmin verifies an admin token: the claim must carry the admin
// flag and the admin record must still be active.
func AuthAdmin(cfg *config.AppConfig, admins AdminDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := security.ParseAccessToken(bearerToken(c), cfg.Security.JWTSecret)
		if err != nil {
			abortAdminTokenError(c, err)
			return
		}

		if !claims.IsAdmin {
			response.AbortFail(c, http.StatusForbidden, "Admin access required")
			return
		}

		admin, err := loadAdmin(c, cfg, admins, claims.PrincipalID)
		if err != nil {
			return
		}

		c.Set(ctxKeyAdmin, admin)
		c.Set(ctxKeyPermissions, rbac.RolePermissions(admin.Role))
		c.Next()
	}
}

// AuthAny accepts either token kind and branches on the admin flag.
// Downstream user-only gates skip when an admin was resolved.
func AuthAny(cfg *config.AppConfig, users UserDirectory, admins AdminDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := security.ParseAccessToken(bearerToken(c), cfg.Security.JWTSecret)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		if claims.IsAdmin {
			admin, err := loadAdmin(c, cfg, admins, claims.PrincipalID)
			if err != nil {
				return
			}
			c.Set(ctxKeyAdmin, admin)
			c.Set(ctxKeyPermissions, rbac.RolePermissions(admin.Role))
		} else {
			user, err := loadUser(c, cfg, users, claims.PrincipalID)
			if err != nil {
				return
			}
			c.Set(ctxKeyUser, user)
		}

		c.Next()
	}
}

func loadUser(c *gin.Context, cfg *config.AppConfig, users UserDirectory, id int64) (models.User, error) {
	user, err := users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.AbortFail(c, http.StatusUnauthorized, "User not found")
		} else {
			response.AbortInternal(c, cfg.IsProduction(), "Authentication failed", err)
		}
		return models.User{}, err
	}

	if user.Status != models.UserStatusActive {
		response.AbortFail(c, http.StatusForbidden, "Account is not active")
		return models.User{}, errors.New("account inactive")
	}
	return user, nil
}

func loadAdmin(c *gin.Context, cfg *config.AppConfig, admins AdminDirectory, id int64) (models.Admin, error) {
	admin, err := admins.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			response.AbortFail(c, http.StatusUnauthorized, "Invalid admin credentials")
		} else {
			response.AbortInternal(c, cfg.IsProduction(), "Authentication failed", err)
		}
		return models.Admin{}, err
	}

	if admin.Status != models.UserStatusActive {
		response.AbortFail(c, http.StatusUnauthorized, "Invalid admin credentials")
		return models.Admin{}, errors.New("admin inactive")
	}
	return admin, nil
}

func abortTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, security.ErrTokenMissing):
		response.AbortFail(c, http.StatusUnauthorized, "Access token required")
	case errors.Is(err, security.ErrTokenExpired):
		response.AbortFail(c, http.StatusUnauthorized, "Token expired")
	default:
		response.AbortFail(c, http.StatusUnauthorized, "Invalid token")
	}
}

func abortAdminTokenError(c *gin.Context, err error) {
	if errors.Is(err, security.ErrTokenMissing) {
		response.AbortFail(c, http.StatusUnauthorized, "Access token required")
		return
	}
	response.AbortFail(c, http.StatusUnauthorized, "Invalid or expired token")
}
