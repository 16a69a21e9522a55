package token

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-ems-server/internal/errors"
)

// Manager issues signed session tokens carrying sub, iat, exp and jti claims.
type Manager struct {
	signer       Signer
	identities   IdentityLookup
	issuer       string
	expiry       time.Duration
	revokedCache RevokedTokenCache
	nowFunc      func() time.Time
}

var _ Service = (*Manager)(nil)

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.expiry = expiry
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

func New(signer Signer, identities IdentityLookup, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:     signer,
		identities: identities,
		issuer:     "ems-server",
	}

	for _, opt := range options {
		opt(m)
	}

	if m.expiry <= 0 {
		m.expiry = 24 * time.Hour
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	if m.revokedCache == nil {
		m.revokedCache = NewInMemoryRevokedTokenCache(m.nowFunc)
	}
	return m
}

func (m *Manager) Issue(_ context.Context, identityID int64) (string, error) {
	if identityID <= 0 {
		return "", errors.Validation("invalid identity id %d", identityID)
	}
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"iss": m.issuer,
		"sub": strconv.FormatInt(identityID, 10),
		"iat": now.Unix(),
		"exp": now.Add(m.expiry).Unix(),
		"jti": uuid.New().String(), // Unique token ID for revocation
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrapf(err, "[Manager Issue] Sign")
	}
	return signed, nil
}

func (m *Manager) Validate(ctx context.Context, raw string) (int64, error) {
	claims, err := m.parse(raw)
	if err != nil {
		return 0, err
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && m.revokedCache.IsRevoked(jti) {
		return 0, errors.ErrTokenRevoked
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, errors.ErrInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidToken
	}

	if _, err := m.identities.Lookup(ctx, id); err != nil {
		if errors.Is(err, errors.ErrIdentityNotFound) {
			return 0, errors.ErrInvalidToken
		}
		return 0, errors.Wrapf(err, "[Manager Validate] Lookup %d", id)
	}
	return id, nil
}

// Revoke adds the token's jti to the revocation cache until the token expires.
func (m *Manager) Revoke(_ context.Context, raw string) error {
	claims, err := m.parse(raw)
	if err != nil {
		return err
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return errors.ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return errors.ErrInvalidToken
	}
	return m.revokedCache.Add(jti, exp.Time)
}

// CleanupRevokedTokens removes expired tokens from the revocation cache
func (m *Manager) CleanupRevokedTokens() {
	m.revokedCache.Cleanup()
}

func (m *Manager) parse(raw string) (jwt.MapClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if _, err := parser.ParseWithClaims(raw, claims, m.signer.GetVerificationKey); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}
	return claims, nil
}
