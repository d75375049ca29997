package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/valoracion/internal/models"
)

type authStubStore struct {
	accounts map[string]*models.Account
	nextID   int64
	findErr  error
}

func newAuthStubStore() *authStubStore {
	return &authStubStore{accounts: map[string]*models.Account{}}
}

func (s *authStubStore) FindAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if a, ok := s.accounts[username]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, nil
}

func (s *authStubStore) CountAccounts(context.Context) (int, error) {
	return len(s.accounts), nil
}

func (s *authStubStore) AddAccount(_ context.Context, username string, hash []byte) (*models.Account, error) {
	if _, ok := s.accounts[username]; ok {
		return nil, errors.New("duplicate account")
	}
	s.nextID++
	a := &models.Account{ID: s.nextID, Username: username, PassHash: hash}
	s.accounts[username] = a
	copy := *a
	return &copy, nil
}

// stubCodec encodes claims as "stub|id|username|exp" without a signature.
type stubCodec struct{}

func (stubCodec) Sign(c AccountClaims) (string, error) {
	return fmt.Sprintf("stub|%d|%s|%d", c.AccountID, c.Username, c.ExpiresAt.Unix()), nil
}

func (stubCodec) Parse(token string, now time.Time) (*AccountClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "stub" {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, NewAuthError(ReasonInvalidToken, err)
	}
	exp, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, NewAuthError(ReasonInvalidToken, err)
	}
	if now.Unix() >= exp {
		return nil, ErrExpiredToken
	}
	return &AccountClaims{AccountID: id, Username: parts[2], ExpiresAt: time.Unix(exp, 0).UTC()}, nil
}

func newTestAuthService(store AccountStore) *AuthService {
	svc := NewAuthService(store, stubCodec{}, zerolog.Nop())
	svc.SetBcryptCost(bcrypt.MinCost)
	return svc
}

func TestEnsureDefaultAccountSeedsOnce(t *testing.T) {
	store := newAuthStubStore()
	svc := newTestAuthService(store)

	created, err := svc.EnsureDefaultAccount(context.Background(), DefaultAdminUsername, DefaultAdminPassword)
	if err != nil {
		t.Fatalf("EnsureDefaultAccount returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected default account to be created")
	}
	acc := store.accounts[DefaultAdminUsername]
	if acc == nil {
		t.Fatalf("seeded account missing")
	}
	if string(acc.PassHash) == DefaultAdminPassword {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword(acc.PassHash, []byte(DefaultAdminPassword)); err != nil {
		t.Fatalf("stored hash does not match default password: %v", err)
	}

	created, err = svc.EnsureDefaultAccount(context.Background(), "other", "pw")
	if err != nil {
		t.Fatalf("second EnsureDefaultAccount returned error: %v", err)
	}
	if created || len(store.accounts) != 1 {
		t.Fatalf("expected no second seed, accounts=%d", len(store.accounts))
	}
}

// racedAccountStore reports no accounts but rejects every insert, as when a
// concurrent instance seeds between the count and the insert.
type racedAccountStore struct {
	*authStubStore
	addErr error
}

func (s *racedAccountStore) CountAccounts(context.Context) (int, error) { return 0, nil }

func (s *racedAccountStore) AddAccount(context.Context, string, []byte) (*models.Account, error) {
	return nil, s.addErr
}

func TestEnsureDefaultAccountToleratesConcurrentSeed(t *testing.T) {
	store := &racedAccountStore{
		authStubStore: newAuthStubStore(),
		addErr:        fmt.Errorf("account %q: %w", DefaultAdminUsername, models.ErrDuplicate),
	}
	svc := newTestAuthService(store)
	created, err := svc.EnsureDefaultAccount(context.Background(), DefaultAdminUsername, DefaultAdminPassword)
	if err != nil {
		t.Fatalf("EnsureDefaultAccount returned error: %v", err)
	}
	if created {
		t.Fatalf("expected created=false when the account already exists")
	}

	store.addErr = errors.New("connection reset")
	if _, err := svc.EnsureDefaultAccount(context.Background(), DefaultAdminUsername, DefaultAdminPassword); err == nil {
		t.Fatalf("expected other insert failures to be returned")
	}
}

func TestEnsureDefaultAccountRequiresCredentials(t *testing.T) {
	svc := newTestAuthService(newAuthStubStore())
	if _, err := svc.EnsureDefaultAccount(context.Background(), " ", "x"); err == nil {
		t.Fatalf("expected error for blank username")
	}
}

func TestLoginAndVerify(t *testing.T) {
	store := newAuthStubStore()
	svc := newTestAuthService(store)
	issued := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	if _, err := svc.EnsureDefaultAccount(context.Background(), DefaultAdminUsername, DefaultAdminPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := svc.Login(context.Background(), DefaultAdminUsername, DefaultAdminPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" || res.Username != DefaultAdminUsername {
		t.Fatalf("unexpected login result %+v", res)
	}
	if want := issued.Add(8 * time.Hour); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", res.ExpiresAt, want)
	}

	claims, err := svc.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.AccountID != 1 || claims.Username != DefaultAdminUsername {
		t.Fatalf("unexpected claims %+v", claims)
	}

	svc.now = func() time.Time { return issued.Add(8*time.Hour + time.Second) }
	if _, err := svc.Verify(res.Token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestLoginDoesNotRevealUnknownUsers(t *testing.T) {
	store := newAuthStubStore()
	svc := newTestAuthService(store)
	if _, err := svc.EnsureDefaultAccount(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "admin", "wrong")
	_, unknownUser := svc.Login(context.Background(), "nobody", "admin123")
	_, emptyInput := svc.Login(context.Background(), "", "")

	for name, err := range map[string]error{"wrong password": wrongPass, "unknown user": unknownUser, "empty": emptyInput} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPass, unknownUser)
	}
}

func TestLoginUsernameIsCaseSensitive(t *testing.T) {
	svc := newTestAuthService(newAuthStubStore())
	if _, err := svc.EnsureDefaultAccount(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "Admin", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for different case, got %v", err)
	}
}

func TestLoginStoreFailureIsNotAuthError(t *testing.T) {
	store := newAuthStubStore()
	store.findErr = errors.New("disk full")
	svc := newTestAuthService(store)
	_, err := svc.Login(context.Background(), "admin", "admin123")
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := AsAuthError(err); ok {
		t.Fatalf("storage failure must not be reported as auth error: %v", err)
	}
	if !errors.Is(err, store.findErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestVerifyDistinguishesReasons(t *testing.T) {
	svc := newTestAuthService(newAuthStubStore())
	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"blank", "   ", ErrMissingToken},
		{"garbage", "not-a-token", ErrInvalidToken},
		{"bad id", "stub|x|admin|99999999999", ErrInvalidToken},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Verify(c.token)
			if !errors.Is(err, c.want) {
				t.Fatalf("Verify(%q) = %v, want %v", c.token, err, c.want)
			}
			for _, other := range []error{ErrMissingToken, ErrInvalidToken, ErrExpiredToken} {
				if other != c.want && errors.Is(err, other) {
					t.Fatalf("Verify(%q) also matched %v", c.token, other)
				}
			}
		})
	}
}
