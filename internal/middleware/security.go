package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"primex/api/internal/config"
	"primex/api/internal/monitor"
	"primex/api/internal/response"
)

const maxInspectedBody = 64 * 1024

// BlockCheck rejects requests from blocked source addresses before any
// other pipeline stage runs.
func BlockCheck(m *monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.IsBlocked(c.ClientIP()) {
			response.AbortFail(c, http.StatusForbidden, "Access denied: Your IP has been blocked")
			return
		}
		c.Next()
	}
}

// DetectSuspicious scans the request against the monitor's signature
// rules. Matches are recorded; the request always proceeds.
func DetectSuspicious(m *monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary := monitor.RequestSummary{
			IPAddress: c.ClientIP(),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			UserAgent: c.GetHeader("User-Agent"),
		}

		// ContentLength is -1 for chunked encoding; only a known-empty
		// body skips the read. Inspection sees at most maxInspectedBody
		// bytes; the handler gets the prefix plus the unread remainder.
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			prefix, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInspectedBody))
			if err == nil {
				summary.Body = string(prefix)
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(prefix), c.Request.Body))
			}
		}

		m.Inspect(summary)
		c.Next()
	}
}

// RateLimit applies the fixed-window counter for the route's rate
// class, keyed by source address and endpoint.
func RateLimit(m *monitor.Monitor, class config.RateClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := m.CheckRateLimit(c.ClientIP(), c.Request.URL.Path, class)

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			response.AbortFail(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
