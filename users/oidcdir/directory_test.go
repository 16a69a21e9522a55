package oidcdir_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/jrsteele09/go-ems-server/users/oidcdir"
	fakeuserrepo "github.com/jrsteele09/go-ems-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "ems-mobile"
	testKeyID    = "test-key"
)

// fakeProvider is a minimal OpenID provider supporting discovery, JWKS and
// the password grant for a single account.
type fakeProvider struct {
	server *httptest.Server
	key    *rsa.PrivateKey
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &fakeProvider{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", p.discovery)
	mux.HandleFunc("GET /jwks", p.jwks)
	mux.HandleFunc("POST /token", p.token)
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) discovery(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                p.server.URL,
		"authorization_endpoint":                p.server.URL + "/authorize",
		"token_endpoint":                        p.server.URL + "/token",
		"jwks_uri":                              p.server.URL + "/jwks",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (p *fakeProvider) jwks(w http.ResponseWriter, r *http.Request) {
	pub := p.key.PublicKey
	_ = json.NewEncoder(w).Encode(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKeyID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (p *fakeProvider) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")

	if r.Form.Get("grant_type") != "password" || r.Form.Get("username") != "jane" || r.Form.Get("password") != "s3cret" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid user credentials",
		})
		return
	}

	now := time.Now()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, jwtlib.MapClaims{
		"iss":                p.server.URL,
		"aud":                testClientID,
		"sub":                "ext-jane",
		"iat":                now.Unix(),
		"exp":                now.Add(time.Hour).Unix(),
		"email":              "jane@example.com",
		"name":               "Jane Doe",
		"preferred_username": "jane",
		"roles":              []string{"ems_manager"},
	})
	tok.Header["kid"] = testKeyID
	idToken, err := tok.SignedString(p.key)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "opaque-access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func TestDirectory_Authenticate(t *testing.T) {
	provider := newFakeProvider(t)
	repo := fakeuserrepo.NewFakeUserRepo()
	ctx := context.Background()

	dir, err := oidcdir.New(ctx, repo, oidcdir.Config{
		Issuer:       provider.server.URL,
		ClientID:     testClientID,
		ClientSecret: "client-secret",
	}, oidcdir.WithHTTPClient(provider.server.Client()))
	require.NoError(t, err)

	t.Run("valid credentials mirror the identity", func(t *testing.T) {
		u, err := dir.Authenticate(ctx, "jane", "s3cret")
		require.NoError(t, err)
		require.NotZero(t, u.ID)
		require.Equal(t, "jane", u.Username)
		require.Equal(t, "jane@example.com", u.Email)
		require.Equal(t, "Jane Doe", u.Name())
		require.True(t, u.HasRole(users.RoleManager))

		again, err := dir.Authenticate(ctx, "jane", "s3cret")
		require.NoError(t, err)
		require.Equal(t, u.ID, again.ID, "second login must reuse the mirrored identity")

		found, err := dir.Lookup(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "ext-jane", found.ExternalID)
	})

	t.Run("rejected credentials carry the provider message", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "jane", "wrong")
		require.Error(t, err)
		require.Equal(t, errors.KindAuthentication, errors.KindOf(err))
		require.Equal(t, "Invalid user credentials", errors.MessageOf(err))
	})
}

func TestNew_RequiresIssuer(t *testing.T) {
	_, err := oidcdir.New(context.Background(), fakeuserrepo.NewFakeUserRepo(), oidcdir.Config{ClientID: "x"})
	require.Error(t, err)
}
