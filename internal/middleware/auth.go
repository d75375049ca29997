package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/soaringjerry/valoracion/internal/services"
)

// Claims is the JWT payload. id and username mirror the token body the
// frontend already decodes.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies HS256 access tokens with a shared secret.
type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret string) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTCodec{secret: []byte(secret)}, nil
}

func (c *JWTCodec) Sign(ac services.AccountClaims) (string, error) {
	claims := Claims{
		ID:       ac.AccountID,
		Username: ac.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ac.TokenID,
			IssuedAt:  jwt.NewNumericDate(ac.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(ac.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse verifies signature, algorithm and expiry (no leeway) as of now.
func (c *JWTCodec) Parse(tok string, now time.Time) (*services.AccountClaims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{},
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, services.NewAuthError(services.ReasonExpiredToken, err)
		}
		return nil, services.NewAuthError(services.ReasonInvalidToken, err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || claims.ID <= 0 || claims.Username == "" {
		return nil, services.NewAuthError(services.ReasonInvalidToken, errors.New("malformed claims"))
	}
	out := &services.AccountClaims{
		AccountID: claims.ID,
		Username:  claims.Username,
		TokenID:   claims.RegisteredClaims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively; anything else yields "".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
