package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
)

// LegacyCodec produces the unsigned base64("id:unix:nonce") tokens that
// older mobile builds store. Anyone who knows an identity id can forge one,
// and they never expire.
type LegacyCodec struct {
	identities IdentityLookup
	nowFunc    func() time.Time
	random     io.Reader
}

var _ Service = (*LegacyCodec)(nil)

type LegacyOption func(*LegacyCodec)

func WithLegacyNowFunc(now func() time.Time) LegacyOption {
	return func(c *LegacyCodec) {
		c.nowFunc = now
	}
}

func NewLegacyCodec(identities IdentityLookup, options ...LegacyOption) *LegacyCodec {
	c := &LegacyCodec{
		identities: identities,
		nowFunc:    time.Now,
		random:     rand.Reader,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *LegacyCodec) Issue(_ context.Context, identityID int64) (string, error) {
	if identityID <= 0 {
		return "", errors.Validation("invalid identity id %d", identityID)
	}
	nonce := make([]byte, 32)
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return "", errors.Wrapf(err, "[LegacyCodec Issue] rand")
	}
	raw := fmt.Sprintf("%d:%d:%s", identityID, c.nowFunc().Unix(), hex.EncodeToString(nonce))
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

func (c *LegacyCodec) Validate(ctx context.Context, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.ErrMissingToken
	}
	decoded, err := decodeLegacy(raw)
	if err != nil {
		return 0, errors.ErrInvalidToken
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return 0, errors.ErrInvalidToken
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidToken
	}

	if _, err := c.identities.Lookup(ctx, id); err != nil {
		if errors.Is(err, errors.ErrIdentityNotFound) {
			return 0, errors.ErrInvalidToken
		}
		return 0, errors.Wrapf(err, "[LegacyCodec Validate] Lookup %d", id)
	}
	return id, nil
}

// decodeLegacy accepts standard base64 with embedded whitespace and with or
// without trailing padding, as older clients sent both.
func decodeLegacy(raw string) ([]byte, error) {
	raw = strings.Join(strings.Fields(raw), "")
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
}

// Revoke is a no-op: legacy tokens carry nothing that could be blocklisted.
func (c *LegacyCodec) Revoke(_ context.Context, _ string) error {
	return nil
}
