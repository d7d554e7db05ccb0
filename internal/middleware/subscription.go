package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"primex/api/internal/response"
	"primex/api/internal/subscription"
)

// Subscription gates user routes on subscription expiry. Admin
// principals pass untouched; a missing principal means the auth
// middleware did not run.
func Subscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			if _, isAdmin := CurrentAdmin(c); isAdmin {
				c.Next()
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		if !subscription.Active(user.SubscriptionEnd, time.Now()) {
			info := subscription.RenewalInfo(c.GetHeader("Accept-Language"))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":           false,
				"message":           info.Message,
				"subscription_info": info,
			})
			return
		}

		c.Next()
	}
}
