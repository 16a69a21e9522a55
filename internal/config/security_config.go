package config

import "time"

const (
	TokenFormatJWT    = "jwt"
	TokenFormatLegacy = "legacy"

	devTokenSecret = "dev-only-token-secret"
)

type SecurityConfig interface {
	GetTokenFormat() string
	GetTokenSecret() string
	GetTokenIssuer() string
	GetTokenExpiry() time.Duration
	GetTokenSigningKeyFile() string
	GetTokenKeyID() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetTokenFormat selects the bearer token format. "legacy" keeps the unsigned
// base64 id:time:nonce tokens older mobile builds expect.
func (Security) GetTokenFormat() string {
	if GetEnv("TOKEN_FORMAT", TokenFormatJWT) == TokenFormatLegacy {
		return TokenFormatLegacy
	}
	return TokenFormatJWT
}

// GetTokenSecret returns the HMAC secret. Outside DEV there is no default.
func (Security) GetTokenSecret() string {
	if isDev() {
		return GetEnv("TOKEN_SECRET", devTokenSecret)
	}
	return GetEnv("TOKEN_SECRET", "")
}

func (Security) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "ems-server")
}

func (Security) GetTokenExpiry() time.Duration {
	return GetDuration("TOKEN_EXPIRY", 24*time.Hour)
}

// GetTokenSigningKeyFile names a PEM private key. When set, tokens are signed
// with RS256 or ES256 instead of the HMAC secret and the public key is
// published at /.well-known/jwks.json.
func (Security) GetTokenSigningKeyFile() string {
	return GetEnv("TOKEN_SIGNING_KEY_FILE", "")
}

func (Security) GetTokenKeyID() string {
	return GetEnv("TOKEN_KEY_ID", "ems-1")
}
