package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/soaringjerry/valoracion/internal/middleware"
	"github.com/soaringjerry/valoracion/internal/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expiresAt"`
}

// POST /api/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		rt.writeMessageError(w, r, http.StatusBadRequest, "error.invalid_json")
		return
	}
	res, err := rt.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.logger.Info().Str("username", res.Username).Msg("login")
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		Username:  res.Username,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type protectedHandler func(w http.ResponseWriter, r *http.Request, claims *services.AccountClaims)

// protected verifies the bearer token and hands the claims to h. Missing and
// expired tokens get 401, any other rejected token 403.
func (rt *Router) protected(h protectedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := rt.auth.Verify(middleware.BearerToken(r))
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		h(w, r, claims)
	}
}
