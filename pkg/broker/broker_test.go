package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jasonp/mcp-gateway/pkg/broker/store"
	"github.com/jasonp/mcp-gateway/pkg/config"
	apperrors "github.com/jasonp/mcp-gateway/pkg/errors"
)

// fakeTokenEndpoint is a minimal OAuth token endpoint. It records the grant
// requests it receives and hands out sequentially numbered access tokens.
type fakeTokenEndpoint struct {
	srv          *httptest.Server
	counter      atomic.Int64
	lastGrant    atomic.Value // url.Values
	rotateSecret bool
	fail         bool
}

func newFakeTokenEndpoint(t *testing.T) *fakeTokenEndpoint {
	t.Helper()
	f := &fakeTokenEndpoint{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.lastGrant.Store(r.PostForm)

		if f.fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}

		n := f.counter.Add(1)
		body := map[string]any{
			"access_token": fmt.Sprintf("access-%d", n),
			"token_type":   "Bearer",
			"expires_in":   3600,
			"scope":        "granted.scope",
		}
		if f.rotateSecret {
			body["refresh_token"] = "rotated-refresh"
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTokenEndpoint) grants() url.Values {
	v, _ := f.lastGrant.Load().(url.Values)
	return v
}

func testBroker(t *testing.T, tokenURL string) (*Broker, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.Config{
		UserID:        "jason",
		BrokerBaseURL: "http://localhost:8587",
		GitHub:        config.OAuthClient{ClientID: "gh-id", ClientSecret: "gh-secret"},
		Google:        config.OAuthClient{ClientID: "goog-id", ClientSecret: "goog-secret"},
	}
	b := New(st, cfg, http.DefaultClient)
	if tokenURL != "" {
		for name, pc := range b.providers {
			pc.Endpoint = oauth2.Endpoint{
				AuthURL:  tokenURL + "/authorize",
				TokenURL: tokenURL + "/token",
			}
			b.providers[name] = pc
		}
	}
	return b, st
}

func seedRecord(t *testing.T, st store.Store, userID string, rec *TokenRecord) {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, st.Put(context.Background(), tokenKey(userID, rec.Provider), raw))
}

func TestIssueTokenNoCredentials(t *testing.T) {
	b, _ := testBroker(t, "")

	_, err := b.IssueToken(context.Background(), "jason", ProviderGitHub)
	require.Error(t, err)
	assert.True(t, apperrors.IsNoCredentials(err))
	assert.Contains(t, err.Error(), "/auth/github")
}

func TestIssueTokenUnknownProvider(t *testing.T) {
	b, _ := testBroker(t, "")

	_, err := b.IssueToken(context.Background(), "jason", "gitlab")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestIssueTokenGitHubNoRefreshToken(t *testing.T) {
	fake := newFakeTokenEndpoint(t)
	b, st := testBroker(t, fake.srv.URL)
	seedRecord(t, st, "jason", &TokenRecord{
		AccessToken: "gh-token",
		Provider:    ProviderGitHub,
		// GitHub OAuth Apps issue no refresh token and no expiry.
	})

	rec, err := b.IssueToken(context.Background(), "jason", ProviderGitHub)
	require.NoError(t, err)
	assert.Equal(t, "gh-token", rec.AccessToken)
	assert.Nil(t, fake.grants(), "no refresh call expected")
}

func TestIssueTokenExpiredWithoutRefreshTokenIsTerminal(t *testing.T) {
	b, st := testBroker(t, "")
	seedRecord(t, st, "jason", &TokenRecord{
		AccessToken: "stale",
		Provider:    ProviderGitHub,
		ExpiresAt:   time.Now().Add(-time.Second).UnixMilli(),
	})

	_, err := b.IssueToken(context.Background(), "jason", ProviderGitHub)
	require.Error(t, err)
	assert.True(t, apperrors.IsNoCredentials(err))
}

func TestIssueTokenRefreshesExpiredToken(t *testing.T) {
	fake := newFakeTokenEndpoint(t)
	b, st := testBroker(t, fake.srv.URL)
	seedRecord(t, st, "jason", &TokenRecord{
		AccessToken:  "expired",
		RefreshToken: "refresh-1",
		Provider:     ProviderGitHub,
		ExpiresAt:    time.Now().Add(-time.Second).UnixMilli(),
	})

	rec, err := b.IssueToken(context.Background(), "jason", ProviderGitHub)
	require.NoError(t, err)
	assert.NotEqual(t, "expired", rec.AccessToken)
	assert.Greater(t, rec.ExpiresAt, time.Now().UnixMilli())

	grant := fake.grants()
	require.NotNil(t, grant)
	assert.Equal(t, "refresh_token", grant.Get("grant_type"))
	assert.Equal(t, "refresh-1", grant.Get("refresh_token"))

	// The merged record is persisted.
	stored, err := b.loadRecord(context.Background(), "jason", ProviderGitHub)
	require.NoError(t, err)
	assert.Equal(t, rec.AccessToken, stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken, "GitHub does not rotate refresh tokens")
}

func TestIssueTokenGoogleAlwaysRefreshes(t *testing.T) {
	fake := newFakeTokenEndpoint(t)
	fake.rotateSecret = true
	b, st := testBroker(t, fake.srv.URL)
	seedRecord(t, st, "jason", &TokenRecord{
		AccessToken:  "still-fresh",
		RefreshToken: "refresh-goog",
		Provider:     ProviderGoogle,
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
	})

	rec, err := b.IssueToken(context.Background(), "jason", ProviderGoogle)
	require.NoError(t, err)
	assert.NotEqual(t, "still-fresh", rec.AccessToken)
	assert.Equal(t, "rotated-refresh", rec.RefreshToken, "rotated refresh token must be kept")
	assert.Equal(t, "granted.scope", rec.Scope)
}

func TestIssueTokenRefreshFailure(t *testing.T) {
	fake := newFakeTokenEndpoint(t)
	fake.fail = true
	b, st := testBroker(t, fake.srv.URL)
	seedRecord(t, st, "jason", &TokenRecord{
		AccessToken:  "expired",
		RefreshToken: "revoked",
		Provider:     ProviderGitHub,
		ExpiresAt:    time.Now().Add(-time.Minute).UnixMilli(),
	})

	_, err := b.IssueToken(context.Background(), "jason", ProviderGitHub)
	require.Error(t, err)
	assert.True(t, apperrors.IsRefreshFailed(err))
}

func TestAuthURL(t *testing.T) {
	b, _ := testBroker(t, "")

	authURL, err := b.AuthURL("jason", ProviderGoogle)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "goog-id", q.Get("client_id"))
	assert.Equal(t, "jason", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "http://localhost:8587/callback/google", q.Get("redirect_uri"))
}

func TestAuthURLGitHubOmitsGoogleParams(t *testing.T) {
	b, _ := testBroker(t, "")

	authURL, err := b.AuthURL("jason", ProviderGitHub)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Empty(t, q.Get("access_type"))
	assert.Empty(t, q.Get("prompt"))
	assert.Equal(t, "http://localhost:8587/callback/github", q.Get("redirect_uri"))
}

func TestCompleteAuthPersistsRecord(t *testing.T) {
	fake := newFakeTokenEndpoint(t)
	fake.rotateSecret = true
	b, _ := testBroker(t, fake.srv.URL)

	err := b.CompleteAuth(context.Background(), ProviderGoogle, "auth-code", "jason")
	require.NoError(t, err)

	grant := fake.grants()
	assert.Equal(t, "authorization_code", grant.Get("grant_type"))
	assert.Equal(t, "auth-code", grant.Get("code"))

	rec, err := b.loadRecord(context.Background(), "jason", ProviderGoogle)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.AccessToken)
	assert.Equal(t, "rotated-refresh", rec.RefreshToken)
	assert.True(t, b.HasCredentials(context.Background(), "jason", ProviderGoogle))
}

func TestCompleteAuthRejectsMissingCodeOrState(t *testing.T) {
	b, _ := testBroker(t, "")

	err := b.CompleteAuth(context.Background(), ProviderGitHub, "", "jason")
	assert.True(t, apperrors.IsInvalidArgument(err))

	err = b.CompleteAuth(context.Background(), ProviderGitHub, "code", "")
	assert.True(t, apperrors.IsInvalidArgument(err))
}
