/*
Package handler provides the HTTP handlers and routing of the dmchat server.
*/
package handler

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/store"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
	maxFullNameLength = 100
)

// dummyHash is compared against on unknown emails so both login failures take as long.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dmchat-timing-equaliser"), bcrypt.DefaultCost)

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup creates an account, sets the credential cookie and returns the profile.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fullName := strings.TrimSpace(input.FullName)
		if fullName == "" || utf8.RuneCountInString(fullName) > maxFullNameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidFullName))
			return
		}

		email, ok := normalizeEmail(input.Email)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		now := time.Now().UTC()
		created, err := deps.Store.Users().Create(r.Context(), user.User{
			ID:           randx.ID(),
			FullName:     fullName,
			Email:        email,
			PasswordHash: string(hashedPassword),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				logx.Warn("Signup conflict: email already exists")
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyExists))
				return
			}

			logx.Error(err, "Failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !issueCookie(w, r, deps, created.ID) {
			return
		}

		logx.Info("User signed up", "user_id", created.ID)
		resp.RespondCreated(w, r, created.Profile())
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies the credentials, sets the credential cookie and returns the profile.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email, ok := normalizeEmail(input.Email)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		found, err := deps.Store.Users().FindByEmail(r.Context(), email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logx.Error(err, "Login: user lookup failed")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("Login: password mismatch", "user_id", found.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !issueCookie(w, r, deps, found.ID) {
			return
		}

		resp.RespondSuccess(w, r, found.Profile())
	}
}

// HandleLogout clears the credential cookie. Tokens are not tracked server side.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jwt.ClearTokenCookie(w, deps.secureCookies())
		resp.RespondSuccess(w, r, map[string]string{"message": "Logged out successfully"})
	}
}

// HandleCheckAuth returns the profile of the authenticated caller.
func HandleCheckAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, me)
	}
}

// issueCookie signs a token for userID and stores it in the credential cookie.
// On failure it writes the error response and returns false.
func issueCookie(w http.ResponseWriter, r *http.Request, deps *AppDeps, userID string) bool {
	token, _, err := deps.Tokens.Issue(userID)
	if err != nil {
		logx.Error(err, "Token generation failed", "user_id", userID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return false
	}

	jwt.SetTokenCookie(w, token, deps.Tokens.TTL(), deps.secureCookies())
	return true
}

// normalizeEmail accepts a bare address ("a@b.c") and lowercases it.
func normalizeEmail(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", false
	}

	return strings.ToLower(addr.Address), true
}
