package middleware

import (
	"github.com/gin-gonic/gin"

	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/pkg/jwt"
)

// AdminMiddleware checks if user has admin role
// Phải đặt sau AuthMiddleware (cần "role" trong context)
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("role")
		if !ok {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		if r, isString := role.(string); !isString || r != jwt.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
