package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getStatus reports service, store, and host statistics
func (s *Server) getStatus(c *gin.Context) {
	status, err := s.systemService.Status(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to collect status", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to collect status"})
		return
	}

	c.JSON(http.StatusOK, status)
}
