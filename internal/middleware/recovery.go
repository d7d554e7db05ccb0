package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"primex/api/internal/response"
)

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("request_id", requestID(c)).
					Msg("panic recovered")
				response.AbortFail(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
