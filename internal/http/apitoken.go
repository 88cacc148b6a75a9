package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/store"
)

// apiTokenKind is the custom claim distinguishing API tokens from session tokens
const apiTokenKind = "api"

// CreateTokenRequest asks for a long-lived API token
type CreateTokenRequest struct {
	Name string `json:"name" binding:"required"`
	TTL  string `json:"ttl"` // Go duration, e.g. "720h"; capped at one year
}

// createToken issues a bearer token for programmatic clients, tied to the
// requesting account
func (s *Server) createToken(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	ttl := constants.APITokenDefaultTTL
	if req.TTL != "" {
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid ttl", Details: "ttl must be a positive Go duration such as 720h"})
			return
		}
		ttl = parsed
	}
	if ttl > constants.APITokenMaxTTL {
		ttl = constants.APITokenMaxTTL
	}

	signed, expiresAt, err := s.issueAPIToken(user, req.Name, ttl)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to sign api token", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      signed,
		"name":       req.Name,
		"expires_at": expiresAt.Unix(),
	})
}

// issueAPIToken signs a bearer token for the user
func (s *Server) issueAPIToken(user *store.User, name string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"iss":  constants.TokenIssuer,
		"sub":  user.ID,
		"name": name,
		"kind": apiTokenKind,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// userFromAPIToken checks the Authorization header for one of our API
// tokens and resolves its account. Session tokens fall through to the
// regular session middleware.
func (s *Server) userFromAPIToken(req *http.Request) (*store.User, bool) {
	tokenStr := extractBearerToken(req)
	if tokenStr == "" {
		return nil, false
	}

	parsed, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if kind, _ := claims["kind"].(string); kind != apiTokenKind {
		return nil, false
	}
	if iss, _ := claims["iss"].(string); iss != constants.TokenIssuer {
		return nil, false
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, false
	}

	user, err := s.database.GetUser(userID)
	if err != nil {
		slog.Warn("api token for unknown user", "user_id", userID)
		return nil, false
	}
	return user, true
}

// extractBearerToken pulls a bearer token from the Authorization header
func extractBearerToken(req *http.Request) string {
	auth := req.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
