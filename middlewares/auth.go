package middlewares

import (
	"strings"

	"pedeai/pkg/resp"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks the Bearer token and, when roles are given, that the
// caller has one of them.
func AuthMiddleware(secret string, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			resp.Unauthorized(c, "missing or invalid token")
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(h, "Bearer "), secret)
		if err != nil {
			resp.Unauthorized(c, "invalid token")
			return
		}
		utils.SetCurrentUser(c, claims.UserID, claims.Role)

		if len(requiredRoles) > 0 && !hasRole(claims.Role, requiredRoles) {
			resp.Forbidden(c, "forbidden")
			return
		}

		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
