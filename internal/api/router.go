package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/soaringjerry/valoracion/internal/middleware"
	"github.com/soaringjerry/valoracion/internal/services"
)

// maxBodyBytes caps request bodies. Review submissions may be allowed more
// when the comment limit needs it; see reviewBodyLimit.
const maxBodyBytes = 256 << 10

// reviewBodyLimit sizes the submission cap so that an over-long comment is
// reported as such rather than as an oversized body. A JSON-escaped rune
// outside the BMP takes at most 12 bytes.
func reviewBodyLimit(maxComment int) int64 {
	if maxComment <= 0 {
		maxComment = services.DefaultMaxCommentLength
	}
	n := int64(maxComment)*12 + 4<<10
	if n < maxBodyBytes {
		return maxBodyBytes
	}
	return n
}

// Config wires the router. MaxCommentLength should match the bound given to
// the review service.
type Config struct {
	Auth             AuthService
	Reviews          ReviewService
	DB               Pinger
	Logger           zerolog.Logger
	AllowedOrigins   []string
	StaticDir        string
	MaxCommentLength int
	Commit           string
	BuildTime        string
}

type Router struct {
	auth      AuthService
	reviews   ReviewService
	db        Pinger
	logger    zerolog.Logger
	origins   []string
	staticDir string
	reviewMax int64
	commit    string
	buildTime string
}

func NewRouter(cfg Config) *Router {
	return &Router{
		auth:      cfg.Auth,
		reviews:   cfg.Reviews,
		db:        cfg.DB,
		logger:    cfg.Logger.With().Str("component", "http").Logger(),
		origins:   cfg.AllowedOrigins,
		staticDir: strings.TrimSpace(cfg.StaticDir),
		reviewMax: reviewBodyLimit(cfg.MaxCommentLength),
		commit:    cfg.Commit,
		buildTime: cfg.BuildTime,
	}
}

// Handler assembles the middleware chain and every route.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(rt.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(rt.origins))
	r.Use(middleware.LocaleMiddleware)

	r.Get("/health", rt.handleHealth)
	r.Get("/version", rt.handleVersion)
	r.Route("/api", rt.Register)

	if rt.staticDir != "" {
		r.NotFound(rt.spaHandler().ServeHTTP)
	}
	return r
}

// Register mounts the JSON API on r.
func (rt *Router) Register(r chi.Router) {
	r.Use(middleware.NoStore)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		rt.writeMessageError(w, req, http.StatusNotFound, "error.not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		rt.writeMessageError(w, req, http.StatusMethodNotAllowed, "error.method_not_allowed")
	})

	r.Post("/login", rt.handleLogin)
	r.Post("/reviews", rt.handleCreateReview)

	r.Get("/reviews", rt.protected(rt.handleListReviews))
	r.Get("/reviews/export", rt.protected(rt.handleExportReviews))
	r.Delete("/reviews/{id}", rt.protected(rt.handleDeleteReview))
	r.Get("/stats", rt.protected(rt.handleStats))
	r.Get("/stats/daily", rt.protected(rt.handleDailyStats))
}
