package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for permanent users.
//
// Create must fail with ErrConflict when a user with the same registration
// number already exists.
type UserStore interface {
	GetByRegistrationNumber(ctx context.Context, registrationNumber string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
}

// User is a verified student account keyed by canonical registration number.
type User struct {
	ID                 uuid.UUID
	RegistrationNumber string
	Email              string
	Name               string
	Gender             string
	Department         string
	Program            string
	PasswordHash       string
	VerificationMethod VerificationMethod
	IDCard             *IDCard
	IsVerified         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IDCard references an uploaded university ID card.
type IDCard struct {
	FileRef  string `json:"file_ref"`
	Verified bool   `json:"verified"`
}

// Genders accepted at signup.
var Genders = []string{"Male", "Female", "Other"}

// Departments accepted at signup.
var Departments = []string{
	"Computer Science",
	"Mechanical",
	"Civil",
	"Management Sciences",
	"Electrical",
	"Computer Engineering",
	"Humanities",
}
