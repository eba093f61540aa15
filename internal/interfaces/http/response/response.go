package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	domainerrors "tbond.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		// Default to Internal Server Error if not an AppError
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// State sends a non-error view state, such as the network warning, with a specific status
func State(c *gin.Context, status int, state string, data gin.H) {
	body := gin.H{"state": state}
	for k, v := range data {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}
