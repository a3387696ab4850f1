package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-do-not-use"

func newService(t *testing.T, opts ...Option) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, 0, opts...)
	require.NoError(t, err)
	return s
}

func TestNewTokenServiceRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	s := newService(t)

	token, expiresAt, err := s.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(UserIdentityExpiration), expiresAt, 5*time.Second)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestIssueRejectsEmptyIdentity(t *testing.T) {
	_, _, err := newService(t).Issue("")
	require.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	past := time.Now().Add(-UserIdentityExpiration - time.Hour)
	issuer := newService(t, WithClock(func() time.Time { return past }))

	token, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = newService(t).Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Now().Truncate(time.Second)
	issuer := newService(t, WithClock(func() time.Time { return issuedAt }))

	token, expiresAt, err := issuer.Issue("user-1")
	require.NoError(t, err)

	justBefore := newService(t, WithClock(func() time.Time { return expiresAt.Add(-time.Second) }))
	id, err := justBefore.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	atExpiry := newService(t, WithClock(func() time.Time { return expiresAt }))
	_, err = atExpiry.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyMalformed(t *testing.T) {
	s := newService(t)

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.token")
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.Verify("")
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenService("another-secret", 0)
		require.NoError(t, err)
		token, _, err := other.Issue("user-1")
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("forged and expired", func(t *testing.T) {
		past := time.Now().Add(-UserIdentityExpiration - time.Hour)
		other, err := NewTokenService("another-secret", 0, WithClock(func() time.Time { return past }))
		require.NoError(t, err)
		token, _, err := other.Issue("user-1")
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := &Payload{
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
			UserID:         "user-1",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := &Payload{
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrTokenMalformed)
	})
}

func TestTokenCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTokenCookie(rec, "abc", UserIdentityExpiration, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(UserIdentityExpiration/time.Second), c.MaxAge)

	rec = httptest.NewRecorder()
	ClearTokenCookie(rec, false)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-cookie", TokenFromRequest(r))
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-header", TokenFromRequest(r))
	})

	t.Run("absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		assert.Empty(t, TokenFromRequest(r))
	})
}
