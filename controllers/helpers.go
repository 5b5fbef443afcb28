package controllers

import (
	"strconv"

	"pedeai/pkg/resp"

	"github.com/gin-gonic/gin"
)

// paramID reads a positive numeric path parameter, answering 400 when it
// is missing or malformed.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		resp.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		resp.BadRequest(c, err.Error())
		return false
	}
	return true
}
