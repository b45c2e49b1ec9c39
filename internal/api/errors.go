package api

import (
	"errors"
	"net/http"

	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError is the single place the forum error taxonomy turns into
// HTTP. Handlers call it and return; no handler inspects error strings
// or picks status codes itself.
//
// Taxonomy errors carry caller-safe context (what was missing, which
// role was required), so their text goes straight to the client.
// Anything else is an internal failure: log the detail, answer with a
// generic 500 so storage internals never leak.
func respondError(c *gin.Context, logger *zap.Logger, err error, op string) {
	switch {
	case errors.Is(err, forum.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, forum.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, forum.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, forum.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}
