package middleware

import (
	"net/http"
	"strings"

	"catalog-backend/apperrors"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
)

func abort(c *gin.Context, status int, code apperrors.Code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   code,
	})
}

// AuthMiddleware validates the bearer access token and exposes user_id,
// user_role and human_id on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Set("human_id", claims.HumanID)
		c.Next()
	}
}

// RequireRoles lets the request through when user_role is one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("user_role")
		roleStr, _ := role.(string)
		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, apperrors.CodeForbidden, "You do not have access to this resource")
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != models.RoleAdmin {
			abort(c, http.StatusForbidden, apperrors.CodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
