// Package config loads the operator-supplied configuration for the gateway
// and the broker. One immutable Config value is built at startup and passed
// explicitly into every component.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Canonical environment variable names.
const (
	envUserID             = "USER_ID"
	envBrokerURL          = "OAUTH_BROKER_URL"
	envGitHubClientID     = "GITHUB_CLIENT_ID"
	envGitHubClientSecret = "GITHUB_CLIENT_SECRET"
	envGoogleClientID     = "GOOGLE_CLIENT_ID"
	envGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	envSupabaseURL        = "SUPABASE_URL"
	envSupabaseKey        = "SUPABASE_KEY"
	envAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	envBrokerBaseURL      = "BROKER_BASE_URL"
	envTokenDBPath        = "TOKEN_DB_PATH"
)

// OAuthClient holds operator-registered OAuth app credentials for one
// upstream provider.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// Config is the process-wide configuration, immutable after Load.
type Config struct {
	// UserID partitions the token store. It is an operator-chosen opaque
	// identifier, not a federated identity.
	UserID string

	// BrokerURL is the base URL of a remote broker. When empty, the broker
	// must be bound in-process.
	BrokerURL string

	// BrokerBaseURL is the externally reachable base URL of the broker's
	// own HTTP surface; OAuth redirect URIs are derived from it.
	BrokerBaseURL string

	// TokenDBPath is the sqlite file backing the token store. Empty means
	// an in-memory store.
	TokenDBPath string

	GitHub OAuthClient
	Google OAuthClient

	SupabaseURL     string
	SupabaseKey     string
	AnthropicAPIKey string

	// GatewayAddr and BrokerAddr are the listen addresses.
	GatewayAddr string
	BrokerAddr  string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	for _, name := range []string{
		envUserID, envBrokerURL, envGitHubClientID, envGitHubClientSecret,
		envGoogleClientID, envGoogleClientSecret, envSupabaseURL,
		envSupabaseKey, envAnthropicAPIKey, envBrokerBaseURL, envTokenDBPath,
	} {
		if err := v.BindEnv(name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}
	v.SetDefault(envBrokerBaseURL, "http://localhost:8587")

	cfg := &Config{
		UserID:        v.GetString(envUserID),
		BrokerURL:     v.GetString(envBrokerURL),
		BrokerBaseURL: v.GetString(envBrokerBaseURL),
		TokenDBPath:   v.GetString(envTokenDBPath),
		GitHub: OAuthClient{
			ClientID:     v.GetString(envGitHubClientID),
			ClientSecret: v.GetString(envGitHubClientSecret),
		},
		Google: OAuthClient{
			ClientID:     v.GetString(envGoogleClientID),
			ClientSecret: v.GetString(envGoogleClientSecret),
		},
		SupabaseURL:     v.GetString(envSupabaseURL),
		SupabaseKey:     v.GetString(envSupabaseKey),
		AnthropicAPIKey: v.GetString(envAnthropicAPIKey),
		GatewayAddr:     ":8586",
		BrokerAddr:      ":8587",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants that must hold for any deployment.
func (c *Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%s is required", envUserID)
	}
	return nil
}
