package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("TOKEN_FORMAT", "")
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("TOKEN_SIGNING_KEY_FILE", "")
	t.Setenv("DIRECTORY", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, config.TokenFormatJWT, c.GetTokenFormat())
	require.NotEmpty(t, c.GetTokenSecret())
	require.Equal(t, 24*time.Hour, c.GetTokenExpiry())
	require.Equal(t, config.StoreDriverSqlite, c.GetStoreDriver())
	require.True(t, c.GetSeedDemo())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))
	require.Empty(t, c.GetTokenSigningKeyFile())
	require.Equal(t, "ems-1", c.GetTokenKeyID())
	require.Equal(t, config.DirectoryLocal, c.GetDirectoryType())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "prod")
	t.Setenv("TOKEN_FORMAT", "legacy")
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("TOKEN_EXPIRY", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ATTENDANCE_REJECT_RECHECKOUT", "true")
	t.Setenv("SEED_DEMO", "")
	t.Setenv("APP_TIMEZONE", "UTC")

	c := config.New()
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, config.TokenFormatLegacy, c.GetTokenFormat())
	require.Empty(t, c.GetTokenSecret())
	require.Equal(t, 90*time.Minute, c.GetTokenExpiry())
	require.True(t, c.GetRejectRepeatCheckOut())
	require.False(t, c.GetSingleOpenCheckIn())
	require.False(t, c.GetSeedDemo())
	require.Equal(t, time.UTC, c.GetLocation())
	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://b.example"))
	require.False(t, origins.IsAllowedOrigin("*"))
	require.Equal(t, "https://a.example, https://b.example", origins.String())
}
