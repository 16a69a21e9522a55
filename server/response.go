package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

// envelope is the body of every response: success, an optional message and
// the payload fields at the top level.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, payload envelope) {
	body := envelope{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation, errors.KindState:
		return http.StatusBadRequest
	case errors.KindAuthentication, errors.KindAuthorization:
		return http.StatusUnauthorized
	case errors.KindForbidden:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its client safe message. Internal errors are
// logged and reported generically.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	if kind == errors.KindInternal {
		log.Ctx(ctx).Error().Err(err).Msg("request failed")
	}
	writeFailure(w, statusFor(kind), errors.MessageOf(err))
}

// decodeJSON reads a JSON request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return errors.Validation("Invalid JSON body")
}

// list renders a nil slice as an empty JSON array.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
