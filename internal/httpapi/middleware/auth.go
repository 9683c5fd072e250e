package middleware

import (
	"net/http"
	"strings"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/auth"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/common"
	"github.com/gin-gonic/gin"
)

const StudentIDKey = "student_id"

// AuthRequired rejects requests without a valid bearer token and puts
// the student id on the gin context.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing bearer token")
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		studentID, err := auth.ParseJWT(token, jwtSecret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid token")
			c.Abort()
			return
		}

		c.Set(StudentIDKey, studentID)
		c.Next()
	}
}

// StudentID reads the authenticated student id set by AuthRequired.
func StudentID(c *gin.Context) (string, bool) {
	v, ok := c.Get(StudentIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
