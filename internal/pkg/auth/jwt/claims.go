package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set carried by identity tokens.
type Payload struct {
	// StandardClaims carries exp, iat and iss. Expiry is what bounds a token's life;
	// nothing is stored server-side.
	jwt.StandardClaims

	// UserID is the identity the token vouches for.
	UserID string `json:"userId"`
}
