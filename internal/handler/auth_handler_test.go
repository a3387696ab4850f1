package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/pow"
	"dmchat/internal/pkg/randx"
)

func TestSignupLoginLogout(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	res, env := c.do(http.MethodPost, "/api/auth/signup", SignupInput{
		FullName: "  Alice Liddell ",
		Email:    "Alice@Example.com",
		Password: "wonderland",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, env.Message)

	alice := decode[user.Profile](t, env.Data)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "Alice Liddell", alice.FullName)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.NotContains(t, string(env.Data), "password")

	var cookie *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == jwt.CookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int(jwt.UserIdentityExpiration.Seconds()), cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure, "development serves plain HTTP")

	res, env = c.do(http.MethodGet, "/api/auth/check", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, alice.ID, decode[user.Profile](t, env.Data).ID)

	res, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env = c.do(http.MethodGet, "/api/auth/check", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, errs.ErrUnauthorized, env.Code)

	res, env = c.do(http.MethodPost, "/api/auth/login", LoginInput{Email: "alice@example.com", Password: "wonderland"})
	require.Equal(t, http.StatusOK, res.StatusCode, env.Message)
	assert.Equal(t, alice.ID, decode[user.Profile](t, env.Data).ID)

	res, _ = c.do(http.MethodGet, "/api/auth/check", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.signup("Alice", "alice@example.com", "wonderland")

	cases := map[string]struct {
		input SignupInput
		code  int
	}{
		"missing name":    {SignupInput{FullName: " ", Email: "bob@example.com", Password: "secret1"}, errs.ErrInvalidFullName},
		"bad email":       {SignupInput{FullName: "Bob", Email: "bob-at-example", Password: "secret1"}, errs.ErrInvalidEmail},
		"display name":    {SignupInput{FullName: "Bob", Email: "Bob <bob@example.com>", Password: "secret1"}, errs.ErrInvalidEmail},
		"short password":  {SignupInput{FullName: "Bob", Email: "bob@example.com", Password: "12345"}, errs.ErrInvalidPassword},
		"long password":   {SignupInput{FullName: "Bob", Email: "bob@example.com", Password: strings.Repeat("x", 73)}, errs.ErrInvalidPassword},
		"duplicate email": {SignupInput{FullName: "Other", Email: "ALICE@example.com", Password: "secret1"}, errs.ErrEmailAlreadyExists},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res, env := c.do(http.MethodPost, "/api/auth/signup", tc.input)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, tc.code, env.Code)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		res, env := c.do(http.MethodPost, "/api/auth/signup", map[string]string{"username": "bob"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, errs.ErrInvalidJSONFormat, env.Code)
	})
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.client(t).signup("Alice", "alice@example.com", "wonderland")

	c := srv.client(t)
	for name, input := range map[string]LoginInput{
		"wrong password": {Email: "alice@example.com", Password: "looking-glass"},
		"unknown email":  {Email: "nobody@example.com", Password: "wonderland"},
		"malformed":      {Email: "nobody", Password: "wonderland"},
	} {
		t.Run(name, func(t *testing.T) {
			res, env := c.do(http.MethodPost, "/api/auth/login", input)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, errs.ErrInvalidCredentials, env.Code)
			assert.Empty(t, res.Cookies())
		})
	}
}

func TestGuardedRoutes(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	t.Run("no token", func(t *testing.T) {
		res, env := c.do(http.MethodGet, "/api/messages/users", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, errs.ErrUnauthorized, env.Code)
	})

	t.Run("garbage bearer token", func(t *testing.T) {
		res, env := c.do(http.MethodGet, "/api/auth/check", nil, "Authorization", "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, errs.ErrTokenInvalid, env.Code)
	})

	t.Run("valid token for unknown user", func(t *testing.T) {
		token, _, err := srv.deps.Tokens.Issue(randx.ID())
		require.NoError(t, err)

		res, env := c.do(http.MethodGet, "/api/auth/check", nil, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, errs.ErrUserNotFound, env.Code)
	})
}

func TestSignupProofOfWork(t *testing.T) {
	srv := newTestServer(t, withPowDifficulty(1))
	c := srv.client(t)

	input := SignupInput{FullName: "Alice", Email: "alice@example.com", Password: "wonderland"}

	res, env := c.do(http.MethodPost, "/api/auth/signup", input)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, errs.ErrPowChallengeRequired, env.Code)

	res, env = c.do(http.MethodGet, "/api/auth/challenge", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	challenge := decode[struct {
		Enabled    bool   `json:"enabled"`
		Difficulty int    `json:"difficulty"`
		Nonce      string `json:"nonce"`
	}](t, env.Data)
	require.True(t, challenge.Enabled)
	require.Equal(t, 1, challenge.Difficulty)

	res, env = c.do(http.MethodPost, "/api/auth/challenge", ChallengeInput{
		Nonce:   challenge.Nonce,
		Counter: failChallenge(challenge.Nonce, challenge.Difficulty),
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, errs.ErrPowChallengeInvalid, env.Code)

	res, env = c.do(http.MethodPost, "/api/auth/challenge", ChallengeInput{
		Nonce:   challenge.Nonce,
		Counter: solveChallenge(challenge.Nonce, challenge.Difficulty),
	})
	require.Equal(t, http.StatusOK, res.StatusCode, env.Message)
	powToken := decode[map[string]string](t, env.Data)["powToken"]

	res, env = c.do(http.MethodPost, "/api/auth/signup", input, pow.TokenHeaderKey, powToken)
	assert.Equal(t, http.StatusCreated, res.StatusCode, env.Message)
}

func challengeHash(nonce string, counter int) string {
	sum := sha256.Sum256([]byte(nonce + strconv.Itoa(counter)))
	return hex.EncodeToString(sum[:])
}

func solveChallenge(nonce string, difficulty int) string {
	prefix := strings.Repeat("0", difficulty)
	for i := 0; ; i++ {
		if strings.HasPrefix(challengeHash(nonce, i), prefix) {
			return strconv.Itoa(i)
		}
	}
}

func failChallenge(nonce string, difficulty int) string {
	prefix := strings.Repeat("0", difficulty)
	for i := 0; ; i++ {
		if !strings.HasPrefix(challengeHash(nonce, i), prefix) {
			return strconv.Itoa(i)
		}
	}
}
