package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a unique key is already taken.
	ErrConflict = errors.New("already exists")
)

// One-time code verification failures.
var (
	ErrNoChallenge       = errors.New("no active otp challenge")
	ErrChallengeExpired  = errors.New("otp challenge expired")
	ErrChallengeMismatch = errors.New("otp code mismatch")
)

var (
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid registration number or password")
	// ErrWrongVerificationMethod is returned when a transition does not match the staged method.
	ErrWrongVerificationMethod = errors.New("verification method mismatch")
	ErrNoIDCard                = errors.New("no university id card on record")
	ErrAlreadyVerified         = errors.New("university id card already verified")
	ErrIDCardMissing           = errors.New("university id card file is missing")
)
