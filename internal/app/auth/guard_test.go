package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
)

const testSecret = "guard-test-secret"

type fakeUsers struct {
	store.Users

	byID map[string]user.User
	err  error
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, store.ErrNotFound
	}
	return u, nil
}

type envelope struct {
	Code int `json:"code"`
}

func newTokens(t *testing.T, opts ...jwt.Option) *jwt.TokenService {
	t.Helper()

	tokens, err := jwt.NewTokenService(testSecret, 0, opts...)
	require.NoError(t, err)
	return tokens
}

func issue(t *testing.T, tokens *jwt.TokenService, id string) string {
	t.Helper()

	token, _, err := tokens.Issue(id)
	require.NoError(t, err)
	return token
}

func serve(guard *Guard, token string) (*httptest.ResponseRecorder, *user.Profile) {
	var seen *user.Profile
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := IdentityFromContext(r.Context()); ok {
			seen = &p
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: jwt.CookieName, Value: token})
	}

	w := httptest.NewRecorder()
	guard.Protect(next).ServeHTTP(w, r)
	return w, seen
}

func assertRejected(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()

	assert.Equal(t, status, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, code, body.Code)
}

func TestGuardProtect(t *testing.T) {
	alice := user.User{ID: "u1", FullName: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	users := &fakeUsers{byID: map[string]user.User{alice.ID: alice}}
	tokens := newTokens(t)
	guard := NewGuard(tokens, users)

	t.Run("valid token injects profile", func(t *testing.T) {
		w, seen := serve(guard, issue(t, tokens, alice.ID))
		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, alice.Profile(), *seen)
	})

	t.Run("missing token", func(t *testing.T) {
		w, seen := serve(guard, "")
		assertRejected(t, w, http.StatusUnauthorized, errs.ErrUnauthorized)
		assert.Nil(t, seen)
	})

	t.Run("malformed token", func(t *testing.T) {
		w, _ := serve(guard, "not.a.token")
		assertRejected(t, w, http.StatusUnauthorized, errs.ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		past := newTokens(t, jwt.WithClock(func() time.Time {
			return time.Now().Add(-jwt.UserIdentityExpiration - time.Hour)
		}))
		w, _ := serve(guard, issue(t, past, alice.ID))
		assertRejected(t, w, http.StatusUnauthorized, errs.ErrTokenExpired)
	})

	t.Run("unknown user", func(t *testing.T) {
		w, _ := serve(guard, issue(t, tokens, "ghost"))
		assertRejected(t, w, http.StatusNotFound, errs.ErrUserNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		broken := NewGuard(tokens, &fakeUsers{err: errors.New("connection reset")})
		w, _ := serve(broken, issue(t, tokens, alice.ID))
		assertRejected(t, w, http.StatusInternalServerError, errs.ErrUnknown)
	})
}

func TestIdentityFromContextMissing(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)
}
