package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyIdentityID stores the authenticated identity ID
	ContextKeyIdentityID ContextKey = "identity_id"
	// ContextKeyToken stores the raw bearer token
	ContextKeyToken ContextKey = "token"
	// ContextKeyUser stores the directory user, set by RequireManager
	ContextKeyUser ContextKey = "user"
)

// bearerToken extracts the token from an Authorization header. The scheme is
// matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", errors.ErrMissingToken
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", errors.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.ErrMissingToken
	}
	return token, nil
}

// RequireBearer validates the bearer token and stores the identity it names.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}
			identityID, err := s.tokens.Validate(r.Context(), raw)
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyIdentityID, identityID)
			ctx = context.WithValue(ctx, ContextKeyToken, raw)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireManager admits administrators and EMS managers. It must run after RequireBearer.
func (s *Server) RequireManager() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := s.directory.Lookup(r.Context(), identityFrom(r.Context()))
			if errors.Is(err, errors.ErrIdentityNotFound) {
				writeError(r.Context(), w, errors.ErrInvalidToken)
				return
			}
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}
			if !user.CanManage() {
				writeError(r.Context(), w, errors.ErrForbidden)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
		}
	}
}

func identityFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(ContextKeyIdentityID).(int64)
	return id
}

func tokenFrom(ctx context.Context) string {
	raw, _ := ctx.Value(ContextKeyToken).(string)
	return raw
}

func userFrom(ctx context.Context) *users.User {
	u, _ := ctx.Value(ContextKeyUser).(*users.User)
	return u
}
