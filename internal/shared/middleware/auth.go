package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bookstore-storefront/internal/shared/response"
	"bookstore-storefront/pkg/jwt"
)

// AuthMiddleware verify bearer access token, set "userID" (uuid.UUID) và "role"
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "missing or malformed bearer token")
			c.Abort()
			return
		}

		claims, err := manager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
