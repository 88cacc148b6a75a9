package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment    string
	ServerAddress  string
	StorePath      string
	SeedPath       string
	SnapshotDir    string
	SnapshotSpec   string
	SnapshotKeep   int
	Auth           AuthConfig
	CORS           CORSConfig
	ServiceVersion string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Google        GoogleOAuthConfig
	AdminUsers    []string
	SecureCookie  bool
	BaseURL       string // Base URL for OAuth callbacks (e.g., http://localhost:8080)
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether the Google provider is configured
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	// Parse CORS allowed origins from comma-separated string
	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:8080")
	allowedOrigins := parseCommaSeparatedList(corsOrigins)

	tokenDuration, err := time.ParseDuration(getEnv("AUTH_TOKEN_DURATION", "24h"))
	if err != nil {
		return nil, err
	}

	snapshotKeep, err := strconv.Atoi(getEnv("SNAPSHOT_KEEP", "10"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		StorePath:     getEnv("STORE_PATH", "./data/tradepost.json"),
		SeedPath:      os.Getenv("SEED_PATH"),
		SnapshotDir:   getEnv("SNAPSHOT_DIR", "./data/snapshots"),
		SnapshotSpec:  getEnv("SNAPSHOT_SPEC", "@every 1h"),
		SnapshotKeep:  snapshotKeep,
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production-secret-key"),
			TokenDuration: tokenDuration,
			SecureCookie:  getEnv("AUTH_SECURE_COOKIE", "false") == "true",
			BaseURL:       getEnv("AUTH_BASE_URL", "http://localhost:8080"),
			AdminUsers:    parseCommaSeparatedList(os.Getenv("ADMIN_USERS")),
			Google: GoogleOAuthConfig{
				ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: allowedOrigins,
		},
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
	}, nil
}

// parseCommaSeparatedList splits a comma-separated string into a slice
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return []string{}
	}

	items := strings.Split(s, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
