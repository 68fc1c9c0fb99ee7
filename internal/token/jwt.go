package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cuisports/sportsreg/internal/model"
)

// Claims carries the student identity issued at login.
type Claims struct {
	jwt.RegisteredClaims
	UserID             uuid.UUID `json:"id"`
	RegistrationNumber string    `json:"registrationNumber"`
	Program            string    `json:"program"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a token manager signing with secretKey. A non-positive ttl
// falls back to model.AccessTokenTTL.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = model.AccessTokenTTL
	}
	return &JWT{secretKey: secretKey, ttl: ttl, now: time.Now}
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateAccessToken signs claims into a token valid for the configured ttl.
func (j *JWT) GenerateAccessToken(claims model.TokenClaims) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID:             claims.UserID,
		RegistrationNumber: claims.RegistrationNumber,
		Program:            claims.Program,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates tokenString and extracts its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return model.TokenClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return model.TokenClaims{}, fmt.Errorf("access token is invalid")
	}
	if claims.UserID == uuid.Nil {
		return model.TokenClaims{}, fmt.Errorf("access token has no user id")
	}

	return model.TokenClaims{
		UserID:             claims.UserID,
		RegistrationNumber: claims.RegistrationNumber,
		Program:            claims.Program,
	}, nil
}
