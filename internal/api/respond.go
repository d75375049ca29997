package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soaringjerry/valoracion/internal/middleware"
	"github.com/soaringjerry/valoracion/internal/services"
	"github.com/soaringjerry/valoracion/internal/utils"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessageError answers with {"error": <localized key>}.
func (rt *Router) writeMessageError(w http.ResponseWriter, r *http.Request, status int, key string) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, status, map[string]string{"error": utils.T(locale, key)})
}

// writeError maps a service error onto a status and a localized body.
// Authentication failures are collapsed into generic messages; their reason
// only reaches the log.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := services.AsAuthError(err); ok {
		status, key := http.StatusUnauthorized, "error.unauthorized"
		switch ae.Reason {
		case services.ReasonInvalidCredentials:
			key = "error.invalid_creds"
		case services.ReasonInvalidToken:
			status, key = http.StatusForbidden, "error.forbidden"
		}
		rt.logger.Warn().
			Str("reason", string(ae.Reason)).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Msg("authentication failed")
		rt.writeMessageError(w, r, status, key)
		return
	}

	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusBadRequest
		switch se.Code {
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		}
		key := se.Key
		if key == "" {
			key = "error.invalid_request"
		}
		rt.writeMessageError(w, r, status, key)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		rt.writeMessageError(w, r, http.StatusRequestEntityTooLarge, "error.too_large")
		return
	}

	rt.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	rt.writeMessageError(w, r, http.StatusInternalServerError, "error.internal")
}
