package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"primex/api/internal/middleware"
	"primex/api/internal/response"
	"primex/api/internal/service"
	"primex/api/internal/subscription"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrAccountInactive):
			response.Fail(c, http.StatusForbidden, "Account is not active")
		default:
			h.log.Error().Err(err).Msg("user login failed")
			response.Fail(c, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":               result.User.ID,
			"username":         result.User.Username,
			"status":           result.User.Status,
			"subscription_end": result.User.SubscriptionEnd,
			"max_devices":      result.User.MaxDevices,
		},
	})
}

func (h HandlerSet) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrAccountInactive):
			response.Fail(c, http.StatusForbidden, "Account is not active")
		default:
			h.log.Error().Err(err).Msg("admin login failed")
			response.Fail(c, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"admin": gin.H{
			"id":       result.Admin.ID,
			"username": result.Admin.Username,
			"role":     result.Admin.Role,
		},
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	response.OK(c, gin.H{
		"id":                  user.ID,
		"username":            user.Username,
		"status":              user.Status,
		"subscription_end":    user.SubscriptionEnd,
		"subscription_active": subscription.Active(user.SubscriptionEnd, time.Now()),
		"max_devices":         user.MaxDevices,
	})
}

// Permissions returns the caller's role permission set for UI hinting;
// enforcement stays with the per-route module checks.
func (h HandlerSet) Permissions(c *gin.Context) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	response.OK(c, gin.H{
		"role":        admin.Role,
		"permissions": middleware.AdminPermissions(c),
	})
}

// StreamAuthorize is the terminal handler of the combined pipeline: by
// the time it runs, block check, rate limiting, token verification and
// (for subscribers) the subscription and device gates have all passed.
func (h HandlerSet) StreamAuthorize(c *gin.Context) {
	if admin, ok := middleware.CurrentAdmin(c); ok {
		response.OK(c, gin.H{"authorized": true, "admin": admin.Username})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	response.OK(c, gin.H{"authorized": true, "user": user.Username})
}
