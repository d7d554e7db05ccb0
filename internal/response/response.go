// Package response holds the boundary envelope shared by every
// handler: {success, message?, data?}.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// Fail writes the error envelope without aborting; handlers return
// after calling it.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// AbortFail writes the error envelope and halts the middleware chain.
func AbortFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AbortInternal maps an unexpected error to a 500. The detailed message
// only leaves the process outside production.
func AbortInternal(c *gin.Context, production bool, fallback string, err error) {
	message := fallback
	if !production && err != nil {
		message = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": message})
}
