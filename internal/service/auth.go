package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/regno"
)

const dummyPassword = "sportsreg-timing-equalizer"

// Session is the result of a successful login.
type Session struct {
	Token string
	User  model.User
	// RegistrationNumber is the normalized form the student typed.
	RegistrationNumber string
}

// Auth authenticates registered students and issues login tokens.
type Auth struct {
	users   model.UserStore
	hasher  model.PasswordHasher
	tokens  model.TokenManager
	codec   *regno.Codec
	logger  *logger.Logger
	metrics *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	users model.UserStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	codec *regno.Codec,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Auth {
	return &Auth{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		codec:   codec,
		logger:  logger,
		metrics: m,
	}
}

// Login checks the password of the student registered under rawRegNo.
// Every failure yields the same invalid-credentials error.
func (a *Auth) Login(ctx context.Context, rawRegNo, password string) (Session, error) {
	key := regno.Normalize(rawRegNo)
	if key == "" || password == "" {
		return Session{}, apierror.NewErrValidation("Registration number and password are required", nil)
	}

	a.logger.Debug("Auth service: login attempt",
		"registration_number", key)

	canonical, err := a.codec.ToCanonical(key)
	if err != nil {
		a.equalizeTiming(password)
		return Session{}, a.loginFailed(key, err)
	}

	user, err := a.users.GetByRegistrationNumber(ctx, canonical)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.equalizeTiming(password)
			return Session{}, a.loginFailed(key, err)
		}
		a.logger.Error("Auth service: failed to get user",
			"registration_number", canonical,
			"error", err.Error())
		return Session{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to get user: %w", err))
	}

	if !a.hasher.Compare(password, user.PasswordHash) {
		return Session{}, a.loginFailed(key, model.ErrInvalidCredentials)
	}

	token, err := a.tokens.GenerateAccessToken(model.TokenClaims{
		UserID:             user.ID,
		RegistrationNumber: user.RegistrationNumber,
		Program:            user.Program,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to generate access token",
			"registration_number", canonical,
			"error", err.Error())
		return Session{}, apierror.NewErrInternalServerError(err)
	}

	a.metrics.IncLogin("success")
	a.logger.Info("Auth service: login successful",
		"registration_number", canonical,
		"user_id", user.ID.String())

	return Session{Token: token, User: user, RegistrationNumber: key}, nil
}

func (a *Auth) loginFailed(key string, cause error) error {
	a.metrics.IncLogin("failure")
	a.logger.Info("Auth service: login failed",
		"registration_number", key,
		"error", cause.Error())
	return apierror.NewErrInvalidCredentials(fmt.Errorf("%s: %w", cause.Error(), model.ErrInvalidCredentials))
}

// equalizeTiming spends a hash comparison when there is no user to compare against.
func (a *Auth) equalizeTiming(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		a.hasher.Compare(password, a.dummyHash)
	}
}

// ParseToken validates a bearer token.
func (a *Auth) ParseToken(token string) (model.TokenClaims, error) {
	claims, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		a.logger.Debug("Auth service: rejected access token",
			"error", err.Error())
		return model.TokenClaims{}, apierror.NewErrUnauthorized("Invalid or expired token")
	}
	return claims, nil
}

// Me returns the profile of the authenticated user.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierror.NewErrUnauthorized("User no longer exists")
		}
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", userID.String(),
			"error", err.Error())
		return model.User{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to get user by id: %w", err))
	}
	return user, nil
}
