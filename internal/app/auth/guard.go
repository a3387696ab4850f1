/*
Package auth guards HTTP handlers behind a verified identity token.
*/
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier is satisfied by *jwt.TokenService.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Guard resolves the caller of a request from its identity token.
type Guard struct {
	tokens TokenVerifier
	users  store.Users
	logger zerolog.Logger
}

// NewGuard returns a Guard verifying with tokens and resolving accounts through users.
func NewGuard(tokens TokenVerifier, users store.Users) *Guard {
	return &Guard{
		tokens: tokens,
		users:  users,
		logger: logx.Component("auth_guard"),
	}
}

// Protect rejects requests without a valid token for an existing user. On success
// next runs with the caller's profile in the request context.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, customErr := g.authenticate(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), profile)))
	})
}

func (g *Guard) authenticate(r *http.Request) (user.Profile, *errs.CustomError) {
	token := jwt.TokenFromRequest(r)
	if token == "" {
		return user.Profile{}, errs.NewError(errs.ErrUnauthorized)
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.Profile{}, errs.NewError(errs.ErrTokenExpired)
		}

		g.logger.Debug().Err(err).Msg("Rejected malformed token.")
		return user.Profile{}, errs.NewError(errs.ErrTokenInvalid)
	}

	u, err := g.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.Profile{}, errs.NewError(errs.ErrUserNotFound)
		}
		return user.Profile{}, errs.NewError(errs.ErrUnknown, err)
	}

	return u.Profile(), nil
}

// WithIdentity returns a copy of ctx carrying profile.
func WithIdentity(ctx context.Context, profile user.Profile) context.Context {
	return context.WithValue(ctx, identityKey, profile)
}

// IdentityFromContext returns the profile injected by Protect.
func IdentityFromContext(ctx context.Context) (user.Profile, bool) {
	profile, ok := ctx.Value(identityKey).(user.Profile)
	return profile, ok
}
