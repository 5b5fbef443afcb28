package middlewares

import (
	"strings"

	"pedeai/pkg/resp"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
)

// WSAuthMiddleware reads the JWT from ?token= first, then the Authorization
// header. Browsers cannot set headers on a websocket handshake.
func WSAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if tokenStr == "" {
			resp.Unauthorized(c, "missing token")
			return
		}

		claims, err := utils.ParseToken(tokenStr, secret)
		if err != nil {
			resp.Unauthorized(c, "invalid token")
			return
		}
		utils.SetCurrentUser(c, claims.UserID, claims.Role)

		c.Next()
	}
}
