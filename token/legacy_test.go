package token_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/stretchr/testify/require"
)

func TestLegacyCodec_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	c := token.NewLegacyCodec(f.dir, token.WithLegacyNowFunc(f.clock))
	ctx := context.Background()

	raw, err := c.Issue(ctx, f.user.ID)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	parts := strings.Split(string(decoded), ":")
	require.Len(t, parts, 3)
	require.Equal(t, "1", parts[0])
	require.Equal(t, "1709542800", parts[1])
	require.Len(t, parts[2], 64)

	id, err := c.Validate(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, id)

	require.NoError(t, c.Revoke(ctx, raw))
	_, err = c.Validate(ctx, raw)
	require.NoError(t, err, "legacy tokens cannot be revoked")
}

func TestLegacyCodec_Validate_LenientEncoding(t *testing.T) {
	f := setupTestFixture(t)
	c := token.NewLegacyCodec(f.dir)
	ctx := context.Background()

	padded := base64.StdEncoding.EncodeToString([]byte("1:1700000000:abc"))
	require.True(t, strings.HasSuffix(padded, "="))

	tests := []struct {
		name string
		raw  string
	}{
		{name: "padded", raw: padded},
		{name: "unpadded", raw: strings.TrimRight(padded, "=")},
		{name: "line wrapped", raw: padded[:8] + "\n" + padded[8:16] + " " + padded[16:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := c.Validate(ctx, tt.raw)
			require.NoError(t, err)
			require.Equal(t, f.user.ID, id)
		})
	}
}

func TestLegacyCodec_Validate_Rejects(t *testing.T) {
	f := setupTestFixture(t)
	c := token.NewLegacyCodec(f.dir)
	ctx := context.Background()

	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "", want: errors.ErrMissingToken},
		{name: "not base64", raw: "%%%", want: errors.ErrInvalidToken},
		{name: "two fields", raw: enc("1:1700000000"), want: errors.ErrInvalidToken},
		{name: "four fields", raw: enc("1:1700000000:abc:def"), want: errors.ErrInvalidToken},
		{name: "non numeric id", raw: enc("x:1700000000:abc"), want: errors.ErrInvalidToken},
		{name: "unknown identity", raw: enc("42:1700000000:abc"), want: errors.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Validate(ctx, tt.raw)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
