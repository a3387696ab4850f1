/*
Package jwt issues and verifies the signed identity tokens used by the HTTP API,
and moves them in and out of the credential cookie.

Tokens are HS256 JWTs holding a single user id. They are never persisted, so logout
is purely a client-side cookie deletion and there is no revocation list.
*/
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// UserIdentityExpiration is the fixed lifetime of an identity token.
	UserIdentityExpiration = 7 * 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "dmchat"
)

var (
	// ErrTokenExpired is returned by Verify for a well-signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed is returned by Verify for anything that does not verify:
	// bad structure, bad signature, unexpected algorithm or missing subject.
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenService signs and verifies identity tokens with a server-held secret.
// It keeps no state besides the secret and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a TokenService.
type Option func(*TokenService)

// WithClock overrides the clock used to stamp issued tokens and to check expiry.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService returns a service signing with secret. A non-positive ttl
// selects UserIdentityExpiration.
func NewTokenService(secret string, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}

	if ttl <= 0 {
		ttl = UserIdentityExpiration
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID and returns it with its expiry instant.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("jwt: empty user id")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns the user id
// it carries. Signature problems win over expiry: a forged expired token is
// ErrTokenMalformed, not ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			const broken = jwt.ValidationErrorMalformed |
				jwt.ValidationErrorUnverifiable |
				jwt.ValidationErrorSignatureInvalid

			if ve.Errors&broken == 0 && ve.Errors&jwt.ValidationErrorExpired != 0 {
				return "", ErrTokenExpired
			}
		}
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenMalformed
	}

	// The library accepts now == exp; the token is only valid strictly before it.
	if claims.ExpiresAt <= s.now().Unix() {
		return "", ErrTokenExpired
	}

	return claims.UserID, nil
}
