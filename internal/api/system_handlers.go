package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soaringjerry/valoracion/internal/middleware"
	"github.com/soaringjerry/valoracion/internal/utils"
)

// GET /health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	status, ok, msg := http.StatusOK, true, utils.T(locale, "health.ok")
	if rt.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.db.Ping(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("health: database unreachable")
			status, ok, msg = http.StatusServiceUnavailable, false, utils.T(locale, "health.db_down")
		}
	}
	writeJSON(w, status, map[string]any{
		"ok":         ok,
		"name":       "Valoracion API",
		"locale":     locale,
		"msg":        msg,
		"commit":     rt.commit,
		"build_time": rt.buildTime,
	})
}

// GET /version
func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"commit":     rt.commit,
		"build_time": rt.buildTime,
	})
}

// spaHandler serves the built frontend. Paths that do not name a file fall
// back to index.html so client-side routes (/login, /admin) survive a reload.
func (rt *Router) spaHandler() http.Handler {
	fs := http.FileServer(http.Dir(rt.staticDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			rt.writeMessageError(w, r, http.StatusNotFound, "error.not_found")
			return
		}
		clean := filepath.Clean("/" + r.URL.Path)
		if info, err := os.Stat(filepath.Join(rt.staticDir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		if strings.Contains(filepath.Base(clean), ".") {
			// Missing asset, not a route.
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filepath.Join(rt.staticDir, "index.html"))
	})
}
