package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pkgz/auth"
	"github.com/go-pkgz/auth/avatar"
	"github.com/go-pkgz/auth/provider"
	"github.com/go-pkgz/auth/token"

	"github.com/tradepost/internal/config"
	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/service"
	"github.com/tradepost/internal/store"
)

// Server wraps the HTTP server
type Server struct {
	config         *config.Config
	database       *store.Store
	authSvc        domain.AuthService
	listingService domain.ListingService
	userService    domain.UserService
	systemService  domain.SystemService
	engine         *gin.Engine
	authService    *auth.Service
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, database *store.Store) *Server {
	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.Default()

	// Middleware - order matters
	engine.Use(securityHeadersMiddleware())
	engine.Use(corsMiddleware(cfg))
	engine.Use(cacheControlMiddleware())
	engine.Use(loggerMiddleware())
	engine.Use(jsonBodyLimitMiddleware(maxBodySize))

	// Request body size limit
	engine.MaxMultipartMemory = maxBodySize

	logger := slog.Default()

	authSvc := service.NewAuthService(database, cfg, logger)
	listingService := service.NewListingService(database, logger)
	userService := service.NewUserService(database, logger)
	systemService := service.NewSystemService(database, cfg, logger)

	server := &Server{
		config:         cfg,
		database:       database,
		authSvc:        authSvc,
		listingService: listingService,
		userService:    userService,
		systemService:  systemService,
		engine:         engine,
		authService:    initAuthService(cfg, authSvc),
	}

	server.setupRoutes()

	return server
}

// initAuthService initializes go-pkgz/auth with the Google OAuth provider
// and a credentials provider backed by the store
func initAuthService(cfg *config.Config, authSvc domain.AuthService) *auth.Service {
	baseURL := cfg.Auth.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// URL must include /auth prefix since that's where we mount the handlers
	opts := auth.Opts{
		SecretReader: token.SecretFunc(func(id string) (string, error) {
			return cfg.Auth.JWTSecret, nil
		}),
		TokenDuration:  cfg.Auth.TokenDuration,
		CookieDuration: constants.CookieDuration,
		Issuer:         constants.TokenIssuer,
		URL:            baseURL + "/auth",
		AvatarStore:    avatar.NewNoOp(),
		SecureCookies:  cfg.Auth.SecureCookie,
		DisableXSRF:    true, // API clients send the token in a header
		Validator: token.ValidatorFunc(func(_ string, claims token.Claims) bool {
			if claims.User == nil {
				slog.Warn("JWT validation failed: no user in claims")
				return false
			}
			return true
		}),
	}

	authService := auth.NewService(opts)

	if cfg.Auth.Google.Enabled() {
		authService.AddProvider("google", cfg.Auth.Google.ClientID, cfg.Auth.Google.ClientSecret)
	}

	// Password login runs through the same token/cookie machinery as OAuth
	authService.AddDirectProvider(constants.ProviderLocal, provider.CredCheckerFunc(func(user, password string) (bool, error) {
		return authSvc.CheckCredentials(context.Background(), user, password)
	}))

	return authService
}

const (
	maxBodySize     = 1 << 20          // 1MB max request body
	readTimeout     = 15 * time.Second // 15s for reading request
	writeTimeout    = 30 * time.Second // 30s for writing responses
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Run starts the HTTP server and serves until ctx is cancelled, then drains
// in-flight requests before returning
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.ServerAddress
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// securityHeadersMiddleware adds security-related HTTP headers
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if c.Request.TLS != nil {
			c.Writer.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// corsMiddleware adds CORS headers with configurable origin
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.CORS.AllowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-XSRF-TOKEN")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheControlMiddleware disables caching for API and auth endpoints
func cacheControlMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/auth/") {
			c.Writer.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Writer.Header().Set("Pragma", "no-cache")
			c.Writer.Header().Set("Expires", "0")
		}

		c.Next()
	}
}

// jsonBodyLimitMiddleware limits the size of JSON request bodies to prevent DoS
func jsonBodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" && c.Request.Method != "DELETE" && c.Request.Method != "OPTIONS" {
			contentType := c.GetHeader("Content-Type")
			if strings.Contains(contentType, "application/json") {
				if c.Request.ContentLength > maxBytes {
					c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
						"error": "Request body too large",
					})
					return
				}
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			}
		}
		c.Next()
	}
}

// loggerMiddleware logs HTTP requests
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		slog.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.Request.RemoteAddr,
		)
		c.Next()
	}
}

// AuthHandlers returns the auth HTTP handlers for mounting
func (s *Server) AuthHandlers() (http.Handler, http.Handler) {
	if s.authService == nil {
		return nil, nil
	}
	return s.authService.Handlers()
}
