package resp

import (
	"errors"
	"log/slog"
	"net/http"

	"pedeai/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": string(apperr.KindValidation), "message": msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": string(apperr.KindUnauthorized), "message": msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": string(apperr.KindForbidden), "message": msg})
}

func ServerError(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "INTERNAL", "message": "internal error"})
}

// Error maps an error from the service layer to its HTTP status.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		ServerError(c, err)
		return
	}
	status := StatusOf(e.Kind)
	if status == http.StatusInternalServerError {
		ServerError(c, err)
		return
	}
	c.JSON(status, gin.H{"ok": false, "error": string(e.Kind), "message": e.Message})
}

// StatusOf is the HTTP status used for an error kind.
func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindCrossRestaurant, apperr.KindRejected:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
