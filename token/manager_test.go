package token_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/jrsteele09/go-ems-server/users"
	fakeuserrepo "github.com/jrsteele09/go-ems-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	secretStr = "1234"
	issuer    = "com.testissuer"
)

type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	dir      *users.LocalDirectory
	user     *users.User
	now      time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	u := &users.User{Username: "demo", Email: "demo@example.com", Roles: []users.RoleType{users.RoleEmployee}}
	require.NoError(t, ur.Upsert(context.Background(), u))

	return &testFixture{
		userRepo: ur,
		dir:      users.NewLocalDirectory(ur),
		user:     u,
		now:      time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
}

func (f *testFixture) clock() time.Time { return f.now }

func (f *testFixture) manager(options ...token.ManagerOption) *token.Manager {
	opts := append([]token.ManagerOption{
		token.WithNowFunc(f.clock),
		token.WithIssuer(issuer),
		token.WithExpiry(time.Hour),
	}, options...)
	return token.New(token.NewHMACSigner(secretStr), f.dir, opts...)
}

func TestManager_IssueValidate(t *testing.T) {
	f := setupTestFixture(t)
	m := f.manager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, f.user.ID)
	require.NoError(t, err)

	id, err := m.Validate(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, id)
}

func TestManager_Validate_Rejects(t *testing.T) {
	f := setupTestFixture(t)
	m := f.manager()
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		_, err := m.Validate(ctx, "  ")
		require.ErrorIs(t, err, errors.ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate(ctx, "not-a-jwt")
		require.ErrorIs(t, err, errors.ErrInvalidToken)
		require.Equal(t, errors.KindAuthorization, errors.KindOf(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := token.New(token.NewHMACSigner("another-secret"), f.dir, token.WithNowFunc(f.clock), token.WithIssuer(issuer))
		raw, err := other.Issue(ctx, f.user.ID)
		require.NoError(t, err)

		_, err = m.Validate(ctx, raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := token.New(token.NewHMACSigner(secretStr), f.dir, token.WithNowFunc(f.clock), token.WithIssuer("someone-else"))
		raw, err := other.Issue(ctx, f.user.ID)
		require.NoError(t, err)

		_, err = m.Validate(ctx, raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("unsigned alg none", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"iss": issuer,
			"sub": "1",
			"exp": f.now.Add(time.Hour).Unix(),
		})
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Validate(ctx, raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("unknown identity", func(t *testing.T) {
		raw, err := m.Issue(ctx, 999)
		require.NoError(t, err)

		_, err = m.Validate(ctx, raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("legacy token", func(t *testing.T) {
		legacy := base64.StdEncoding.EncodeToString([]byte("1:1700000000:abcdef"))
		_, err := m.Validate(ctx, legacy)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})
}

func TestManager_Expiry(t *testing.T) {
	f := setupTestFixture(t)
	m := f.manager()
	ctx := context.Background()

	raw, err := m.Issue(ctx, f.user.ID)
	require.NoError(t, err)

	f.now = f.now.Add(59 * time.Minute)
	_, err = m.Validate(ctx, raw)
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Minute)
	_, err = m.Validate(ctx, raw)
	require.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestManager_Revoke(t *testing.T) {
	f := setupTestFixture(t)
	cache := token.NewInMemoryRevokedTokenCache(f.clock)
	m := f.manager(token.WithRevokedTokenCache(cache))
	ctx := context.Background()

	first, err := m.Issue(ctx, f.user.ID)
	require.NoError(t, err)
	second, err := m.Issue(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first, second, "each token carries its own jti")

	require.NoError(t, m.Revoke(ctx, first))

	_, err = m.Validate(ctx, first)
	require.ErrorIs(t, err, errors.ErrTokenRevoked)
	_, err = m.Validate(ctx, second)
	require.NoError(t, err)

	require.Error(t, m.Revoke(ctx, "garbage"))

	f.now = f.now.Add(2 * time.Hour)
	m.CleanupRevokedTokens()
	require.Equal(t, 0, cache.Len())
}

func TestManager_IssueRejectsBadID(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager().Issue(context.Background(), 0)
	require.Error(t, err)
}

func TestHMACSigner_EmptySecret(t *testing.T) {
	_, err := token.NewHMACSigner("").Sign(jwt.MapClaims{"sub": "1"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "empty secret"))
}
