package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/escolar/inventario/internal/crypto"
	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/model"
	"github.com/escolar/inventario/internal/repository"
)

type fakeUsers struct {
	byID   map[uuid.UUID]*model.User
	byName map[string]*model.User
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*model.User{}, byName: map[string]*model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if _, ok := f.byName[u.Username]; ok {
		return errs.ErrAlreadyExists
	}
	f.byID[u.ID] = u
	f.byName[u.Username] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	cur, ok := f.byID[u.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Name, cur.Role, cur.Sector, cur.Email = u.Name, u.Role, u.Sector, u.Email
	return nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id uuid.UUID, pwdHash, saltAuth []byte) error {
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PwdHash, u.SaltAuth = pwdHash, saltAuth
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(f.byName, u.Username)
	delete(f.byID, id)
	return nil
}

type fakeLimiter struct {
	allowed      bool
	blockOnFail  bool
	allowErr     error
	allowCalls   int
	successCalls int
	failureCalls int
}

func (f *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	f.allowCalls++
	return f.allowed, 0, f.allowErr
}

func (f *fakeLimiter) Success(context.Context, string, []byte) error {
	f.successCalls++
	return nil
}

func (f *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	f.failureCalls++
	return f.blockOnFail, 0, nil
}

func seedUser(t *testing.T, username, password string) *model.User {
	t.Helper()
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	return &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: username,
		Name:     "Maria Souza",
		Role:     model.RoleSector,
		Sector:   "TI",
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
	}
}

func TestLoginWithIP(t *testing.T) {
	ctx := context.Background()
	key := []byte("test-key")

	t.Run("success", func(t *testing.T) {
		u := seedUser(t, "maria", "s3cret")
		lim := &fakeLimiter{allowed: true}
		svc := NewAuthService(newFakeUsers(u), key, time.Hour, lim)

		toks, got, err := svc.LoginWithIP(ctx, "maria", "s3cret", "10.0.0.1")
		if err != nil {
			t.Fatalf("LoginWithIP: %v", err)
		}
		if toks.AccessToken == "" {
			t.Fatal("empty access token")
		}
		if got.ID != u.ID {
			t.Errorf("returned user %s, want %s", got.ID, u.ID)
		}
		if lim.successCalls != 1 || lim.failureCalls != 0 {
			t.Errorf("limiter calls: success=%d failure=%d", lim.successCalls, lim.failureCalls)
		}

		// The issued token round-trips through Authenticate.
		back, err := svc.Authenticate(ctx, toks.AccessToken)
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if back.ID != u.ID {
			t.Errorf("Authenticate user %s, want %s", back.ID, u.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		u := seedUser(t, "maria", "s3cret")
		lim := &fakeLimiter{allowed: true}
		svc := NewAuthService(newFakeUsers(u), key, time.Hour, lim)

		_, _, err := svc.LoginWithIP(ctx, "maria", "nope", "10.0.0.1")
		if !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
		if lim.failureCalls != 1 {
			t.Errorf("failure calls = %d, want 1", lim.failureCalls)
		}
	})

	t.Run("unknown user looks like wrong password", func(t *testing.T) {
		lim := &fakeLimiter{allowed: true}
		svc := NewAuthService(newFakeUsers(), key, time.Hour, lim)

		_, _, err := svc.LoginWithIP(ctx, "ghost", "whatever", "10.0.0.1")
		if !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
		if lim.failureCalls != 1 {
			t.Errorf("failure calls = %d, want 1", lim.failureCalls)
		}
	})

	t.Run("blocked before attempt", func(t *testing.T) {
		u := seedUser(t, "maria", "s3cret")
		lim := &fakeLimiter{allowed: false}
		svc := NewAuthService(newFakeUsers(u), key, time.Hour, lim)

		_, _, err := svc.LoginWithIP(ctx, "maria", "s3cret", "10.0.0.1")
		if !errors.Is(err, errs.ErrRateLimited) {
			t.Fatalf("err = %v, want ErrRateLimited", err)
		}
		if lim.failureCalls != 0 || lim.successCalls != 0 {
			t.Error("blocked login must not touch counters")
		}
	})

	t.Run("failure crosses threshold", func(t *testing.T) {
		u := seedUser(t, "maria", "s3cret")
		lim := &fakeLimiter{allowed: true, blockOnFail: true}
		svc := NewAuthService(newFakeUsers(u), key, time.Hour, lim)

		_, _, err := svc.LoginWithIP(ctx, "maria", "nope", "10.0.0.1")
		if !errors.Is(err, errs.ErrRateLimited) {
			t.Fatalf("err = %v, want ErrRateLimited", err)
		}
	})

	t.Run("limiter error propagates", func(t *testing.T) {
		u := seedUser(t, "maria", "s3cret")
		boom := errors.New("db down")
		lim := &fakeLimiter{allowErr: boom}
		svc := NewAuthService(newFakeUsers(u), key, time.Hour, lim)

		_, _, err := svc.LoginWithIP(ctx, "maria", "s3cret", "10.0.0.1")
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	key := []byte("test-key")
	u := seedUser(t, "maria", "s3cret")
	svc := NewAuthService(newFakeUsers(u), key, time.Hour, &fakeLimiter{allowed: true})

	sign := func(t *testing.T, claims jwt.RegisteredClaims, key []byte) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "not-a-jwt"); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		tok := sign(t, jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, []byte("other-key"))
		if _, err := svc.Authenticate(ctx, tok); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		tok := sign(t, jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}, key)
		if _, err := svc.Authenticate(ctx, tok); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("unknown subject", func(t *testing.T) {
		tok := sign(t, jwt.RegisteredClaims{
			Subject:   uuid.Must(uuid.NewV4()).String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, key)
		if _, err := svc.Authenticate(ctx, tok); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		tok := sign(t, jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}, key)
		if _, err := svc.Authenticate(ctx, tok); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})
}
