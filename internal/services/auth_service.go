package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/valoracion/internal/models"
)

const (
	// TokenTTL is the absolute lifetime of an access token. There is no refresh.
	TokenTTL = 8 * time.Hour

	// DefaultAdminUsername and DefaultAdminPassword seed the first account.
	// The password is publicly known; change it before any real deployment.
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"

	DefaultBcryptCost = 10
)

// AccountStore persists administrator accounts. AddAccount reports a taken
// username with an error matching models.ErrDuplicate.
type AccountStore interface {
	FindAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	CountAccounts(ctx context.Context) (int, error)
	AddAccount(ctx context.Context, username string, passHash []byte) (*models.Account, error)
}

// AccountClaims is the verified content of an access token.
type AccountClaims struct {
	AccountID int64
	Username  string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec signs and parses access tokens. Parse must report failures as
// ErrInvalidToken or ErrExpiredToken, judging expiry against now.
type TokenCodec interface {
	Sign(c AccountClaims) (string, error)
	Parse(token string, now time.Time) (*AccountClaims, error)
}

type AuthService struct {
	store      AccountStore
	codec      TokenCodec
	logger     zerolog.Logger
	now        func() time.Time
	tokenID    func() string
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

func NewAuthService(store AccountStore, codec TokenCodec, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		codec:      codec,
		logger:     logger.With().Str("component", "auth").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
		tokenID:    uuid.NewString,
		bcryptCost: DefaultBcryptCost,
	}
}

// SetBcryptCost changes the cost used for newly hashed passwords. Values
// outside bcrypt's accepted range are ignored.
func (s *AuthService) SetBcryptCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.bcryptCost = cost
	}
}

// EnsureDefaultAccount creates the bootstrap account when the store holds
// none. It reports whether an account was created.
func (s *AuthService) EnsureDefaultAccount(ctx context.Context, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return false, fmt.Errorf("seed account: username and password required")
	}
	n, err := s.store.CountAccounts(ctx)
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}
	acc, err := s.store.AddAccount(ctx, username, hash)
	if errors.Is(err, models.ErrDuplicate) {
		// Another instance seeded between the count and the insert.
		s.logger.Info().Str("username", username).Msg("default account already seeded")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("add seed account: %w", err)
	}
	ev := s.logger.Info()
	if password == DefaultAdminPassword {
		ev = s.logger.Warn().Bool("default_password", true)
	}
	ev.Int64("account_id", acc.ID).Str("username", acc.Username).Msg("default account created")
	return true, nil
}

// Login checks credentials and issues a token. Unknown usernames and wrong
// passwords yield the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	acc, err := s.store.FindAccountByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if acc == nil {
		// Burn a comparable amount of time so response latency does not
		// reveal whether the username exists.
		_ = bcrypt.CompareHashAndPassword(s.fallbackHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PassHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if s.codec == nil {
		return nil, fmt.Errorf("token codec not configured")
	}
	issued := s.now()
	claims := AccountClaims{
		AccountID: acc.ID,
		Username:  acc.Username,
		TokenID:   s.tokenID(),
		IssuedAt:  issued,
		ExpiresAt: issued.Add(TokenTTL),
	}
	token, err := s.codec.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, Username: acc.Username, ExpiresAt: claims.ExpiresAt}, nil
}

// Verify validates a presented token and returns its claims.
func (s *AuthService) Verify(token string) (*AccountClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if s.codec == nil {
		return nil, fmt.Errorf("token codec not configured")
	}
	claims, err := s.codec.Parse(token, s.now())
	if err != nil {
		if _, ok := AsAuthError(err); ok {
			return nil, err
		}
		return nil, NewAuthError(ReasonInvalidToken, err)
	}
	return claims, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return TokenTTL
}

func (s *AuthService) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("valoracion-timing-pad"), s.bcryptCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("generate timing pad hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
