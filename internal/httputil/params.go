package httputil

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// RequireIDParam validates and returns the :id URL parameter
func RequireIDParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", fmt.Errorf("missing id")
	}
	return id, nil
}
