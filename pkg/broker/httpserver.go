package broker

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/jasonp/mcp-gateway/pkg/errors"
	"github.com/jasonp/mcp-gateway/pkg/logger"
)

// tokenRequest is the body of POST /token/{provider}.
type tokenRequest struct {
	UserID string `json:"user_id"`
}

// tokenResponse is the body returned by POST /token/{provider}.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Handler returns the broker's HTTP surface:
//
//	GET  /auth/{provider}?user_id=<id>      302 to the authorization URL
//	GET  /callback/{provider}?code&state    code exchange, success HTML
//	POST /token/{provider} {user_id}        {access_token, expires_at}
//	GET  /health                            liveness probe
func (b *Broker) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/auth/{provider}", b.handleAuth)
	r.Get("/callback/{provider}", b.handleCallback)
	r.Post("/token/{provider}", b.handleToken)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// handleAuth starts the authorization-code flow with a redirect.
func (b *Broker) handleAuth(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	authURL, err := b.AuthURL(userID, provider)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Infow("starting OAuth flow", "user_id", userID, "provider", provider)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback finishes the authorization-code flow.
func (b *Broker) handleCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		writeErrorPage(w, fmt.Errorf("OAuth error: %s - %s", errParam, query.Get("error_description")))
		return
	}

	err := b.CompleteAuth(r.Context(), provider, query.Get("code"), query.Get("state"))
	if err != nil {
		writeErrorPage(w, err)
		return
	}

	writeSuccessPage(w)
}

// handleToken is the endpoint the gateway's HTTP resolver transport calls.
func (b *Broker) handleToken(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	rec, err := b.IssueToken(r.Context(), req.UserID, provider)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case apperrors.IsNoCredentials(err):
			status = http.StatusNotFound
		case apperrors.IsInvalidArgument(err):
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: rec.AccessToken,
		ExpiresAt:   rec.ExpiresAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warnf("failed to write JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// setSecurityHeaders sets common security headers for the HTML pages.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; style-src 'unsafe-inline'; script-src 'none'; object-src 'none';")
}

// writeSuccessPage writes the static post-consent success page.
func writeSuccessPage(w http.ResponseWriter) {
	setSecurityHeaders(w)
	htmlContent := `
<!DOCTYPE html>
<html>
<head>
    <title>Authentication Successful</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .container { max-width: 600px; margin: 0 auto; }
        .message { padding: 20px; border-radius: 5px; margin: 20px 0; }
        .success { background-color: #e7f6e7; border: 1px solid #b3e6b3; color: #006600; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authentication Successful!</h1>
        <div class="message success">
            <p>Your account is connected. You can close this window.</p>
        </div>
    </div>
</body>
</html>`
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		logger.Warnf("failed to write HTML content: %v", err)
	}
}

// writeErrorPage writes an error page. The message is HTML-escaped so no
// untrusted callback input is reflected.
func writeErrorPage(w http.ResponseWriter, err error) {
	setSecurityHeaders(w)
	w.WriteHeader(http.StatusBadRequest)

	escapedError := html.EscapeString(err.Error())
	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <title>Authentication Failed</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .container { max-width: 600px; margin: 0 auto; }
        .message { padding: 20px; border-radius: 5px; margin: 20px 0; }
        .error { background-color: #ffe7e7; border: 1px solid #ffb3b3; color: #cc0000; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authentication Failed</h1>
        <div class="message error">
            <p>%s</p>
            <p>Please try again.</p>
        </div>
    </div>
</body>
</html>`, escapedError)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		logger.Warnf("failed to write HTML content: %v", err)
	}
}

// Server wraps the broker handler in an http.Server with the standard
// hardening timeouts.
func (b *Broker) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
