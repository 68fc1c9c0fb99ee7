package model

import "context"

// Mailer delivers one-time codes by email.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}
