package utils

import "github.com/gin-gonic/gin"

const (
	ctxUserID = "userId"
	ctxRole   = "role"
)

// SetCurrentUser stores the authenticated caller on the gin context.
func SetCurrentUser(c *gin.Context, userID uint, role string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(ctxUserID)
	switch id := v.(type) {
	case uint:
		return id
	case int:
		return uint(id)
	case float64:
		return uint(id)
	default:
		return 0
	}
}

func CurrentRole(c *gin.Context) string {
	if v, ok := c.Get(ctxRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
