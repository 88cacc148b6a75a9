package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-pkgz/auth/token"

	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
)

const userContextKey = "user"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// register creates a local account. Login itself is handled by the auth
// service mounted at /auth/local/login.
func (s *Server) register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid register request", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	user, err := s.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// authMiddleware requires a valid session. It accepts either a go-pkgz
// session token (cookie or bearer) or one of our long-lived API tokens,
// resolves the store user, and stashes it in the gin context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	sessionAuth := s.authService.Middleware()

	return func(c *gin.Context) {
		// API tokens first: they are signed by us but carry different
		// claims than session tokens.
		if user, ok := s.userFromAPIToken(c.Request); ok {
			c.Set(userContextKey, user)
			c.Next()
			return
		}

		var tokenUser token.User
		var authenticated bool

		handler := sessionAuth.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := token.GetUserInfo(r); err == nil {
				tokenUser = u
				authenticated = true
			}
			c.Request = r
		}))
		handler.ServeHTTP(c.Writer, c.Request)

		if !authenticated {
			// The auth middleware may already have written its own 401
			if !c.Writer.Written() {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			}
			c.Abort()
			return
		}

		user, err := s.resolveStoreUser(c, tokenUser)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "session user has no account", "auth_id", tokenUser.ID, "error", err)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unknown account"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// resolveStoreUser maps a session identity onto a store user, provisioning
// Google identities on first sight
func (s *Server) resolveStoreUser(c *gin.Context, tokenUser token.User) (*store.User, error) {
	ctx := c.Request.Context()
	if strings.HasPrefix(tokenUser.ID, constants.ProviderGoogle+"_") {
		return s.authSvc.EnsureOAuthUser(ctx, tokenUser.ID, tokenUser.Name, constants.ProviderGoogle)
	}
	return s.authSvc.ResolveUser(ctx, tokenUser.ID, tokenUser.Name)
}

// adminMiddleware requires the resolved store user to hold the admin role.
// It must run after authMiddleware.
func (s *Server) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := getUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			slog.WarnContext(c.Request.Context(), "admin endpoint denied", "username", user.Username)
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getUserFromContext extracts the authenticated store user from context
func getUserFromContext(c *gin.Context) (*store.User, bool) {
	if v, exists := c.Get(userContextKey); exists {
		if u, ok := v.(*store.User); ok {
			return u, true
		}
	}
	return nil, false
}

// renderError maps domain errors to HTTP statuses
func (s *Server) renderError(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotListingOwner), errors.Is(err, domain.ErrRegistrationClosed):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrListingInvalidState), errors.Is(err, domain.ErrLastAdmin):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
