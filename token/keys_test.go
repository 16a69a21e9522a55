package token_test

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/stretchr/testify/require"
)

func TestKeyPairSigner_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	rsaPair, err := token.GenerateRSAKeyPair("rsa-1", 2048)
	require.NoError(t, err)
	ecPair, err := token.GenerateECDSAKeyPair("ec-1")
	require.NoError(t, err)

	for _, kp := range []*token.KeyPair{rsaPair, ecPair} {
		t.Run(kp.Algorithm, func(t *testing.T) {
			m := token.New(token.NewKeyPairSigner(kp), f.dir, token.WithNowFunc(f.clock))

			raw, err := m.Issue(ctx, f.user.ID)
			require.NoError(t, err)

			parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
			require.NoError(t, err)
			require.Equal(t, kp.Algorithm, parsed.Method.Alg())
			require.Equal(t, kp.KeyID, parsed.Header["kid"])

			id, err := m.Validate(ctx, raw)
			require.NoError(t, err)
			require.Equal(t, f.user.ID, id)

			hmac := token.New(token.NewHMACSigner(secretStr), f.dir, token.WithNowFunc(f.clock))
			_, err = hmac.Validate(ctx, raw)
			require.ErrorIs(t, err, errors.ErrInvalidToken, "algorithm is pinned to the signer")
		})
	}
}

func TestLoadKeyPairFromPEM(t *testing.T) {
	kp, err := token.GenerateRSAKeyPair("rsa-1", 2048)
	require.NoError(t, err)
	pemData, err := kp.ExportPrivateKeyPEM()
	require.NoError(t, err)

	loaded, err := token.LoadKeyPairFromPEM("rsa-1", pemData)
	require.NoError(t, err)
	require.Equal(t, "RS256", loaded.Algorithm)
	require.True(t, kp.PrivateKey.(*rsa.PrivateKey).Equal(loaded.PrivateKey))

	_, err = token.LoadKeyPairFromPEM("x", []byte("not pem"))
	require.Error(t, err)
}

func TestKeyPairSigner_JWKS(t *testing.T) {
	kp, err := token.GenerateRSAKeyPair("rsa-1", 2048)
	require.NoError(t, err)

	set, err := token.NewKeyPairSigner(kp).JWKS()
	require.NoError(t, err)
	require.Len(t, set.Keys, 1)
	key := set.Keys[0]
	require.Equal(t, "RSA", key.Kty)
	require.Equal(t, "rsa-1", key.Kid)

	n, err := base64.RawURLEncoding.DecodeString(key.N)
	require.NoError(t, err)
	require.Zero(t, new(big.Int).SetBytes(n).Cmp(kp.PrivateKey.(*rsa.PrivateKey).N))

	ec, err := token.GenerateECDSAKeyPair("ec-1")
	require.NoError(t, err)
	set, err = token.NewKeyPairSigner(ec).JWKS()
	require.NoError(t, err)
	x, err := base64.RawURLEncoding.DecodeString(set.Keys[0].X)
	require.NoError(t, err)
	require.Len(t, x, 32)
}

func TestKeyPairSigner_Expiry(t *testing.T) {
	f := setupTestFixture(t)
	kp, err := token.GenerateECDSAKeyPair("ec-1")
	require.NoError(t, err)
	m := token.New(token.NewKeyPairSigner(kp), f.dir, token.WithNowFunc(f.clock), token.WithExpiry(time.Minute))

	raw, err := m.Issue(context.Background(), f.user.ID)
	require.NoError(t, err)
	f.now = f.now.Add(2 * time.Minute)
	_, err = m.Validate(context.Background(), raw)
	require.ErrorIs(t, err, errors.ErrTokenExpired)
}
