package middleware

import (
	"github.com/gin-gonic/gin"

	"contact-agenda/internal/shared/response"
)

// RequireStaff guards the admin JSON API: anonymous callers get 401,
// non-staff users 403.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		if !u.IsStaff {
			response.Forbidden(c, "Access denied: staff account required")
			c.Abort()
			return
		}
		c.Next()
	}
}
