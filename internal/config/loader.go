package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultAdminUserID is the fixed identity granted mutation rights over any
// schedule. Overridable so staging environments can use their own account.
const defaultAdminUserID = "109000785926202904276"

// OAuthProvider holds the client credentials for one federated login provider.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

// Configured reports whether both credentials for the provider are present.
func (p OAuthProvider) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	BaseURL     string
	SessionTTL  time.Duration
	AdminUserID string
	GitHub      OAuthProvider
	Google      OAuthProvider
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults. OAuth provider credentials
// are optional as a pair: a provider with neither value set is simply
// disabled, but setting only one of the two is reported as an error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8000,
		SQLiteDSN:   "file:arranger.db?_foreign_keys=on",
		BaseURL:     "http://localhost:8000",
		SessionTTL:  24 * time.Hour,
		AdminUserID: defaultAdminUserID,
	}

	invalid := make([]string, 0, 2)
	mismatched := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ARRANGER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ARRANGER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ARRANGER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if base := strings.TrimSpace(os.Getenv("ARRANGER_BASE_URL")); base != "" {
		cfg.BaseURL = strings.TrimSuffix(base, "/")
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ARRANGER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ARRANGER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if admin := strings.TrimSpace(os.Getenv("ARRANGER_ADMIN_USER_ID")); admin != "" {
		cfg.AdminUserID = admin
	}

	cfg.GitHub = OAuthProvider{
		ClientID:     strings.TrimSpace(os.Getenv("GITHUB_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("GITHUB_CLIENT_SECRET")),
	}
	if (cfg.GitHub.ClientID == "") != (cfg.GitHub.ClientSecret == "") {
		mismatched = append(mismatched, "GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET")
	}

	cfg.Google = OAuthProvider{
		ClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
	}
	if (cfg.Google.ClientID == "") != (cfg.Google.ClientSecret == "") {
		mismatched = append(mismatched, "GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}
	if len(mismatched) > 0 {
		return Config{}, fmt.Errorf("OAuth クライアント設定が不完全です: %s", strings.Join(mismatched, ", "))
	}

	return cfg, nil
}
