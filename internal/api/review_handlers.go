package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/valoracion/internal/middleware"
	"github.com/soaringjerry/valoracion/internal/services"
	"github.com/soaringjerry/valoracion/internal/utils"
)

// POST /api/reviews (public)
func (rt *Router) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rt.reviewMax))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	review, err := rt.reviews.Submit(r.Context(), body)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// GET /api/reviews
func (rt *Router) handleListReviews(w http.ResponseWriter, r *http.Request, claims *services.AccountClaims) {
	list, err := rt.reviews.List(r.Context(), claims)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/reviews/export
func (rt *Router) handleExportReviews(w http.ResponseWriter, r *http.Request, claims *services.AccountClaims) {
	b, err := rt.reviews.ExportCSV(r.Context(), claims)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	name := "valoraciones-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// DELETE /api/reviews/{id}
func (rt *Router) handleDeleteReview(w http.ResponseWriter, r *http.Request, claims *services.AccountClaims) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		rt.writeMessageError(w, r, http.StatusBadRequest, "error.invalid_id")
		return
	}
	if id <= 0 {
		// No row can have such an id.
		rt.writeMessageError(w, r, http.StatusNotFound, "error.review_not_found")
		return
	}
	if err := rt.reviews.Delete(r.Context(), claims, id); err != nil {
		rt.writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": utils.T(locale, "review.deleted")})
}

// GET /api/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request, claims *services.AccountClaims) {
	st, err := rt.reviews.Stats(r.Context(), claims)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /api/stats/daily
func (rt *Router) handleDailyStats(w http.ResponseWriter, r *http.Request, claims *services.AccountClaims) {
	days, err := rt.reviews.Daily(r.Context(), claims)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
