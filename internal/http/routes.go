package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradepost/internal/apipaths"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Mount auth routes (login, logout, callbacks)
	// go-pkgz/auth expects paths relative to mount point, so we strip /auth prefix
	if s.authService != nil {
		authHandler, avatarHandler := s.AuthHandlers()
		if authHandler != nil {
			s.engine.Any("/auth/*path", wrapAuthHandler(authHandler, "/auth"))
		}
		if avatarHandler != nil {
			s.engine.Any("/avatar/*path", wrapAuthHandler(avatarHandler, "/avatar"))
		}
	}

	// Registration is our own endpoint; login itself is served by the
	// mounted auth handlers
	s.engine.POST(apipaths.Register, s.register)

	// Health check endpoint (no auth required)
	s.engine.GET(apipaths.Health, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "tradepost",
		})
	})

	// Public marketplace browsing
	s.engine.GET(apipaths.Listings, s.listListings)
	s.engine.GET(apipaths.Listings+"/:id", s.getListing)

	// Authenticated API
	api := s.engine.Group("/api")
	api.Use(s.authMiddleware())
	{
		api.GET("/me", s.getCurrentUser)
		api.GET("/my/listings", s.listMyListings)
		api.POST("/tokens", s.createToken)
		api.GET("/status", s.getStatus)

		listings := api.Group("/listings")
		{
			listings.POST("", s.createListing)
			listings.PUT("/:id", s.updateListing)
			listings.DELETE("/:id", s.deleteListing)
			listings.POST("/:id/publish", s.publishListing)
			listings.POST("/:id/sold", s.markListingSold)
		}

		admin := api.Group("/admin")
		admin.Use(s.adminMiddleware())
		{
			admin.GET("/users", s.listUsers)
			admin.POST("/users/:id/promote", s.promoteUser)
			admin.POST("/users/:id/demote", s.demoteUser)
			admin.GET("/settings", s.getSettings)
			admin.PUT("/settings", s.updateSettings)
		}
	}
}

// getCurrentUser returns the authenticated user info
func (s *Server) getCurrentUser(c *gin.Context) {
	user, exists := getUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Not authenticated",
			Details: "Please login to continue",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// wrapAuthHandler wraps an http.Handler for use with Gin, stripping the prefix
// go-pkgz/auth expects paths relative to where it's mounted
func wrapAuthHandler(handler http.Handler, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		originalPath := c.Request.URL.Path
		c.Request.URL.Path = strings.TrimPrefix(originalPath, prefix)

		handler.ServeHTTP(c.Writer, c.Request)

		c.Request.URL.Path = originalPath
	}
}
