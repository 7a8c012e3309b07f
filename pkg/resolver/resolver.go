// Package resolver gives tool handlers a single call that produces a
// currently valid access token for a (user, provider) pair, hiding whether
// the broker is reachable in-process or over HTTP.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jasonp/mcp-gateway/pkg/broker"
	apperrors "github.com/jasonp/mcp-gateway/pkg/errors"
	"github.com/jasonp/mcp-gateway/pkg/logger"
)

// Resolver resolves a valid access token for (userID, provider).
// Implementations must not cache tokens; freshness is owned by the broker.
type Resolver interface {
	Resolve(ctx context.Context, userID, provider string) (string, error)
}

// APIKeys holds the static keys for non-OAuth providers. Resolution for
// these providers short-circuits without touching the broker.
type APIKeys map[string]string

// New picks the transport: bound when a broker is co-resident, HTTP
// otherwise. Handlers never learn which one is active.
func New(b *broker.Broker, brokerURL string, httpClient *http.Client, keys APIKeys) (Resolver, error) {
	if b != nil {
		logger.Debug("auth resolver using bound broker transport")
		return &Bound{broker: b, keys: keys}, nil
	}
	if brokerURL == "" {
		return nil, fmt.Errorf("no broker bound and OAUTH_BROKER_URL is not set")
	}
	logger.Debugf("auth resolver using HTTP broker transport: %s", brokerURL)
	return &HTTP{baseURL: brokerURL, client: httpClient, keys: keys}, nil
}

// Bound resolves tokens by direct invocation of an in-process broker.
type Bound struct {
	broker *broker.Broker
	keys   APIKeys
}

// Resolve returns a valid access token.
func (r *Bound) Resolve(ctx context.Context, userID, provider string) (string, error) {
	if key, ok := r.keys[provider]; ok {
		return key, nil
	}

	rec, err := r.broker.IssueToken(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	return rec.AccessToken, nil
}

// HTTP resolves tokens by calling the broker's loopback token endpoint.
type HTTP struct {
	baseURL string
	client  *http.Client
	keys    APIKeys
}

// Resolve POSTs {user_id} to <broker>/token/{provider}.
func (r *HTTP) Resolve(ctx context.Context, userID, provider string) (string, error) {
	if key, ok := r.keys[provider]; ok {
		return key, nil
	}

	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode token request", err)
	}

	url := fmt.Sprintf("%s/token/%s", r.baseURL, provider)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", apperrors.NewUpstreamError("broker unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to read broker response", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", apperrors.NewNoCredentialsError(brokerErrorMessage(raw), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewRefreshFailedError(
			fmt.Sprintf("broker returned %d: %s", resp.StatusCode, brokerErrorMessage(raw)), nil)
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", apperrors.NewUpstreamError("broker returned malformed JSON", err)
	}
	if decoded.AccessToken == "" {
		return "", apperrors.NewUpstreamError("broker returned an empty access token", nil)
	}
	return decoded.AccessToken, nil
}

// brokerErrorMessage extracts the broker's error field, falling back to the
// raw body.
func brokerErrorMessage(raw []byte) string {
	var decoded struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != "" {
		return decoded.Error
	}
	return string(raw)
}
