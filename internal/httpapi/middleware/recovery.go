package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/common"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/logger"
	"github.com/gin-gonic/gin"
)

// Recovery converts panics into the standard error envelope instead of
// gin's default plain-text response.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()))
				if !c.Writer.Written() {
					common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
