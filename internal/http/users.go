package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/httputil"
	"github.com/tradepost/internal/store"
)

// listUsers returns all accounts (admin only)
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.userService.List(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// promoteUser grants the admin role (admin only)
func (s *Server) promoteUser(c *gin.Context) {
	s.changeRole(c, s.userService.Promote)
}

// demoteUser revokes the admin role (admin only)
func (s *Server) demoteUser(c *gin.Context) {
	s.changeRole(c, s.userService.Demote)
}

func (s *Server) changeRole(c *gin.Context, fn func(ctx context.Context, id string) (*store.User, error)) {
	id, err := httputil.RequireIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID"})
		return
	}

	user, err := fn(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err, "Failed to change role")
		return
	}

	c.JSON(http.StatusOK, user)
}

// getSettings returns site settings (admin only)
func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.userService.Settings(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to get settings", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettings applies a partial settings update (admin only)
func (s *Server) updateSettings(c *gin.Context) {
	var req domain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	settings, err := s.userService.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
