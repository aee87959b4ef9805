package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, profile map[string]any, status int) *googleService {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "google-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer google-access", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return newGoogleService(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Scopes:       []string{"email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, srv.URL+"/userinfo")
}

func TestGoogleService_GenerateStateIsRandom(t *testing.T) {
	svc := newGoogleService(&oauth2.Config{}, "")

	a, err := svc.GenerateState()
	require.NoError(t, err)
	b, err := svc.GenerateState()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestGoogleService_RedirectURL(t *testing.T) {
	svc := newFakeGoogle(t, nil, http.StatusOK)

	u, err := url.Parse(svc.RedirectURL("xyz"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "select_account", q.Get("prompt"))
}

func TestGoogleService_ExchangeAndProfile(t *testing.T) {
	ctx := context.Background()
	svc := newFakeGoogle(t, map[string]any{
		"id":             "g-123",
		"email":          "alice@acme.test",
		"verified_email": true,
		"name":           "Alice",
	}, http.StatusOK)

	token, err := svc.Exchange(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "google-access", token.AccessToken)

	profile, err := svc.Profile(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, GoogleProfile{GoogleID: "g-123", Email: "alice@acme.test", VerifiedEmail: true, Name: "Alice"}, profile)

	_, err = svc.Exchange(ctx, "bad-code")
	assert.Error(t, err)
}

func TestGoogleService_ProfileErrors(t *testing.T) {
	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "google-access", TokenType: "Bearer"}

	t.Run("non-200", func(t *testing.T) {
		svc := newFakeGoogle(t, map[string]any{}, http.StatusUnauthorized)
		_, err := svc.Profile(ctx, token)
		assert.Error(t, err)
	})

	t.Run("missing email", func(t *testing.T) {
		svc := newFakeGoogle(t, map[string]any{"id": "g-1"}, http.StatusOK)
		_, err := svc.Profile(ctx, token)
		assert.Error(t, err)
	})
}
