package httpapi

import (
	"errors"
	"net/http"
	"yatube/internal/config"
	groupPort "yatube/internal/ports/group"
	postPort "yatube/internal/ports/post"
	userPort "yatube/internal/ports/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, postPort.ErrNotFound) ||
		errors.Is(err, userPort.ErrNotFound) ||
		errors.Is(err, groupPort.ErrNotFound)
}

// abortWithError answers 404 for missing entities and 500 for everything else.
func abortWithError(c *gin.Context, err error) {
	if isNotFound(err) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	config.Logger.Error("Request error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
