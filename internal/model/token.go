package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessTokenTTL is the lifetime of a login token.
const AccessTokenTTL = time.Hour

// TokenClaims is the identity carried by a login token.
type TokenClaims struct {
	UserID             uuid.UUID
	RegistrationNumber string
	Program            string
}

// TokenManager signs and validates login tokens.
type TokenManager interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ParseAccessToken(token string) (TokenClaims, error)
}
