package api

import (
	"context"

	"github.com/soaringjerry/valoracion/internal/models"
	"github.com/soaringjerry/valoracion/internal/services"
)

// AuthService is the part of services.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Verify(token string) (*services.AccountClaims, error)
}

// ReviewService is the part of services.ReviewService the handlers use.
type ReviewService interface {
	Submit(ctx context.Context, body []byte) (*models.Review, error)
	List(ctx context.Context, claims *services.AccountClaims) ([]*models.Review, error)
	Delete(ctx context.Context, claims *services.AccountClaims, id int64) error
	Stats(ctx context.Context, claims *services.AccountClaims) (*models.Stats, error)
	ExportCSV(ctx context.Context, claims *services.AccountClaims) ([]byte, error)
	Daily(ctx context.Context, claims *services.AccountClaims) ([]services.DailyStats, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ AuthService   = (*services.AuthService)(nil)
	_ ReviewService = (*services.ReviewService)(nil)
)
