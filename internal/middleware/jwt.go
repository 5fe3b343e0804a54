package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/youssifElhelaly12/rayaBackend/internal/auth"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

const (
	// ContextAdminID is the key for the authenticated admin id in gin context.
	ContextAdminID = "admin_id"
)

// JWT returns a middleware that validates the bearer token and sets the
// admin id in context.
func JWT(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := tokens.Verify(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if claims.Role != "admin" {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Set(ContextAdminID, claims.Subject)
		c.Next()
	}
}
