// Package broker implements the OAuth credential custodian. It owns the
// long-lived refresh grants for upstream providers, mints short-lived
// access tokens on demand and runs the interactive authorization-code flow.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/jasonp/mcp-gateway/pkg/broker/store"
	"github.com/jasonp/mcp-gateway/pkg/config"
	apperrors "github.com/jasonp/mcp-gateway/pkg/errors"
	"github.com/jasonp/mcp-gateway/pkg/logger"
)

// Provider tags for the OAuth providers the broker knows about.
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// refreshWindow is how close to expiry a token may get before issuance
// triggers a refresh.
const refreshWindow = 60 * time.Second

// TokenRecord is the per (user, provider) credential state. It exists iff
// the user has completed the OAuth authorization flow for that provider.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is an absolute instant in UTC milliseconds. Zero means the
	// token carries no upstream expiry (GitHub OAuth Apps).
	ExpiresAt int64  `json:"expires_at"`
	Scope     string `json:"scope,omitempty"`
	Provider  string `json:"provider"`
}

// ProviderConfig is the static per-provider OAuth metadata, immutable after
// startup.
type ProviderConfig struct {
	Endpoint     oauth2.Endpoint
	ClientID     string
	ClientSecret string
	Scopes       []string

	// AuthParams are extra authorization URL parameters (Google needs
	// access_type=offline and prompt=consent to be handed a refresh token).
	AuthParams map[string]string
}

// Broker is the token custodian. It is safe for concurrent use; racing
// refreshes of the same key are deliberately allowed and resolved
// last-write-wins (both Google and GitHub accept concurrent refreshes).
type Broker struct {
	store      store.Store
	providers  map[string]ProviderConfig
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// New creates a Broker backed by the given store. The baseURL is the
// broker's own externally reachable base URL; redirect URIs are derived
// from it.
func New(st store.Store, cfg *config.Config, httpClient *http.Client) *Broker {
	providers := map[string]ProviderConfig{
		ProviderGitHub: {
			Endpoint:     github.Endpoint,
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			Scopes:       []string{"repo", "workflow", "read:org"},
		},
		ProviderGoogle: {
			Endpoint:     google.Endpoint,
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.modify",
				"https://www.googleapis.com/auth/gmail.settings.basic",
				"https://www.googleapis.com/auth/calendar",
				"https://www.googleapis.com/auth/drive",
			},
			AuthParams: map[string]string{
				"access_type": "offline",
				"prompt":      "consent",
			},
		},
	}

	return &Broker{
		store:      st,
		providers:  providers,
		baseURL:    cfg.BrokerBaseURL,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// tokenKey is the persisted-state key for a (user, provider) pair.
func tokenKey(userID, provider string) string {
	return fmt.Sprintf("%s_%s_token", userID, provider)
}

// oauth2Config builds the golang.org/x/oauth2 config for a provider.
func (b *Broker) oauth2Config(provider string, pc ProviderConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		Endpoint:     pc.Endpoint,
		Scopes:       pc.Scopes,
		RedirectURL:  fmt.Sprintf("%s/callback/%s", b.baseURL, provider),
	}
}

// providerConfig looks up a provider, or errors for unknown tags.
func (b *Broker) providerConfig(provider string) (ProviderConfig, error) {
	pc, ok := b.providers[provider]
	if !ok {
		return ProviderConfig{}, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("unknown provider %q", provider), nil)
	}
	return pc, nil
}

// IssueToken returns a currently valid access token for (userID, provider),
// refreshing the stored record first when a refresh token is present and the
// access token is expiring, or always for Google. Google rotates refresh
// tokens and scope grants are not stable across app-config changes, so every
// Google issuance goes through the token endpoint.
func (b *Broker) IssueToken(ctx context.Context, userID, provider string) (*TokenRecord, error) {
	pc, err := b.providerConfig(provider)
	if err != nil {
		return nil, err
	}

	rec, err := b.loadRecord(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	if rec.RefreshToken == "" {
		// No refresh possible; the stored expiry is terminal.
		if rec.ExpiresAt != 0 && rec.ExpiresAt <= b.now().UnixMilli() {
			return nil, apperrors.NewNoCredentialsError(
				fmt.Sprintf("token for %s/%s expired and cannot be refreshed; re-run /auth/%s",
					userID, provider, provider), nil)
		}
		return rec, nil
	}

	expiring := rec.ExpiresAt <= b.now().Add(refreshWindow).UnixMilli()
	if provider == ProviderGoogle || expiring {
		return b.refresh(ctx, userID, provider, pc, rec)
	}
	return rec, nil
}

// loadRecord reads and decodes the stored TokenRecord.
func (b *Broker) loadRecord(ctx context.Context, userID, provider string) (*TokenRecord, error) {
	raw, err := b.store.Get(ctx, tokenKey(userID, provider))
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NewNoCredentialsError(
				fmt.Sprintf("no credentials for %s/%s; run /auth/%s?user_id=%s first",
					userID, provider, provider, userID), nil)
		}
		return nil, apperrors.NewInternalError("failed to read token store", err)
	}

	var rec TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, apperrors.NewInternalError("corrupt token record", err)
	}
	return &rec, nil
}

// refresh exchanges the stored refresh token for a fresh access token and
// persists the merged record. The exchange is detached from the caller's
// cancellation: aborting a refresh mid-flight could strand a rotated
// refresh token, so the POST always runs to completion.
func (b *Broker) refresh(
	ctx context.Context, userID, provider string, pc ProviderConfig, rec *TokenRecord,
) (*TokenRecord, error) {
	refreshCtx := context.WithoutCancel(ctx)
	if b.httpClient != nil {
		refreshCtx = context.WithValue(refreshCtx, oauth2.HTTPClient, b.httpClient)
	}

	seed := &oauth2.Token{RefreshToken: rec.RefreshToken}
	tok, err := b.oauth2Config(provider, pc).TokenSource(refreshCtx, seed).Token()
	if err != nil {
		return nil, apperrors.NewRefreshFailedError(
			fmt.Sprintf("refresh for %s/%s failed", userID, provider), err)
	}

	merged := &TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: rec.RefreshToken,
		Scope:        rec.Scope,
		Provider:     provider,
	}
	// Google may rotate the refresh token; GitHub usually does not.
	if tok.RefreshToken != "" {
		merged.RefreshToken = tok.RefreshToken
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		merged.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		merged.ExpiresAt = tok.Expiry.UnixMilli()
	}

	if err := b.saveRecord(ctx, userID, provider, merged); err != nil {
		return nil, err
	}
	logger.Debugw("refreshed access token", "user_id", userID, "provider", provider)
	return merged, nil
}

// saveRecord persists a TokenRecord. Last write wins under concurrency.
func (b *Broker) saveRecord(ctx context.Context, userID, provider string, rec *TokenRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewInternalError("failed to encode token record", err)
	}
	if err := b.store.Put(context.WithoutCancel(ctx), tokenKey(userID, provider), raw); err != nil {
		return apperrors.NewInternalError("failed to persist token record", err)
	}
	return nil
}

// AuthURL builds the authorization URL for the interactive consent flow.
// The state parameter carries the raw user id; this is acceptable only
// because the redirect URI is unique per deployment.
func (b *Broker) AuthURL(userID, provider string) (string, error) {
	pc, err := b.providerConfig(provider)
	if err != nil {
		return "", err
	}

	var opts []oauth2.AuthCodeOption
	for k, v := range pc.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return b.oauth2Config(provider, pc).AuthCodeURL(userID, opts...), nil
}

// CompleteAuth exchanges an authorization code and persists the resulting
// TokenRecord under (state, provider), where state is the user id that
// began the flow.
func (b *Broker) CompleteAuth(ctx context.Context, provider, code, state string) error {
	pc, err := b.providerConfig(provider)
	if err != nil {
		return err
	}
	if state == "" {
		return apperrors.NewInvalidArgumentError("missing state parameter", nil)
	}
	if code == "" {
		return apperrors.NewInvalidArgumentError("missing authorization code", nil)
	}

	exchangeCtx := ctx
	if b.httpClient != nil {
		exchangeCtx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	}

	tok, err := b.oauth2Config(provider, pc).Exchange(exchangeCtx, code)
	if err != nil {
		return apperrors.NewUpstreamError(
			fmt.Sprintf("failed to exchange code for %s token", provider), err)
	}

	rec := &TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Provider:     provider,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		rec.ExpiresAt = tok.Expiry.UnixMilli()
	}

	if err := b.saveRecord(ctx, state, provider, rec); err != nil {
		return err
	}
	logger.Infow("completed OAuth flow", "user_id", state, "provider", provider)
	return nil
}

// HasCredentials reports whether a TokenRecord exists for (userID, provider).
func (b *Broker) HasCredentials(ctx context.Context, userID, provider string) bool {
	_, err := b.store.Get(ctx, tokenKey(userID, provider))
	return err == nil
}

// Providers returns the configured provider tags in stable order.
func (b *Broker) Providers() []string {
	return []string{ProviderGitHub, ProviderGoogle}
}
