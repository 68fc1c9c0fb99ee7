package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// PendingRegistrationTTL is the default lifetime of a staged signup.
const PendingRegistrationTTL = time.Hour

// OTPValidity is the lifetime of an issued one-time code.
const OTPValidity = 10 * time.Minute

// PendingStore persists unverified signups keyed by normalized registration number.
//
// Get returns ErrNotFound for missing and expired records. Put replaces any
// record stored under the same key.
type PendingStore interface {
	Put(ctx context.Context, pending PendingRegistration) error
	Get(ctx context.Context, registrationNumber string) (PendingRegistration, error)
	Delete(ctx context.Context, registrationNumber string) error
}

// ExpiredPurger is implemented by pending stores that need explicit eviction.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// VerificationMethod selects how a pending signup proves identity.
type VerificationMethod string

const (
	// MethodOTP verifies by an emailed one-time code.
	MethodOTP VerificationMethod = "OTP"
	// MethodUniversityID verifies by an uploaded university ID card.
	MethodUniversityID VerificationMethod = "UniversityID"
)

// VerificationMethods lists the accepted verification methods.
var VerificationMethods = []string{string(MethodOTP), string(MethodUniversityID)}

// Verification is the method-specific state of a pending signup. It is
// either OTPVerification or UniversityIDVerification.
type Verification interface {
	Method() VerificationMethod
	verification()
}

// OTPVerification holds the active challenge of an OTP signup, if any.
type OTPVerification struct {
	Challenge *OTPChallenge
}

// Method implements Verification.
func (OTPVerification) Method() VerificationMethod { return MethodOTP }

func (OTPVerification) verification() {}

// UniversityIDVerification holds the uploaded ID card reference, if any.
type UniversityIDVerification struct {
	IDCardRef string
}

// Method implements Verification.
func (UniversityIDVerification) Method() VerificationMethod { return MethodUniversityID }

func (UniversityIDVerification) verification() {}

// NewVerification returns the empty verification state for method.
func NewVerification(method VerificationMethod) (Verification, error) {
	switch method {
	case MethodOTP:
		return OTPVerification{}, nil
	case MethodUniversityID:
		return UniversityIDVerification{}, nil
	default:
		return nil, fmt.Errorf("unknown verification method %q", method)
	}
}

// OTPChallenge is a one-time code and its expiry.
type OTPChallenge struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingRegistration is a staged signup awaiting verification.
type PendingRegistration struct {
	RegistrationNumber string
	Email              string
	Name               string
	Gender             string
	Department         string
	Program            string
	PasswordHash       string
	Verification       Verification
	CreatedAt          time.Time
	ExpiresAt          time.Time
}

// Method returns the verification method of the record.
func (p PendingRegistration) Method() VerificationMethod {
	if p.Verification == nil {
		return ""
	}
	return p.Verification.Method()
}

// Expired reports whether the record is past its expiry at now.
func (p PendingRegistration) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

type pendingJSON struct {
	RegistrationNumber string             `json:"registration_number"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	Gender             string             `json:"gender"`
	Department         string             `json:"department"`
	Program            string             `json:"program"`
	PasswordHash       string             `json:"password_hash"`
	Method             VerificationMethod `json:"verification_method"`
	OTP                *OTPChallenge      `json:"otp,omitempty"`
	IDCardRef          string             `json:"id_card_ref,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	ExpiresAt          time.Time          `json:"expires_at"`
}

// MarshalJSON flattens the verification state into a method tag and its payload.
func (p PendingRegistration) MarshalJSON() ([]byte, error) {
	out := pendingJSON{
		RegistrationNumber: p.RegistrationNumber,
		Email:              p.Email,
		Name:               p.Name,
		Gender:             p.Gender,
		Department:         p.Department,
		Program:            p.Program,
		PasswordHash:       p.PasswordHash,
		CreatedAt:          p.CreatedAt,
		ExpiresAt:          p.ExpiresAt,
	}

	switch v := p.Verification.(type) {
	case OTPVerification:
		out.Method = MethodOTP
		out.OTP = v.Challenge
	case UniversityIDVerification:
		out.Method = MethodUniversityID
		out.IDCardRef = v.IDCardRef
	default:
		return nil, fmt.Errorf("pending registration %s has no verification method", p.RegistrationNumber)
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores the verification state from its method tag.
func (p *PendingRegistration) UnmarshalJSON(data []byte) error {
	var in pendingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var v Verification
	switch in.Method {
	case MethodOTP:
		v = OTPVerification{Challenge: in.OTP}
	case MethodUniversityID:
		v = UniversityIDVerification{IDCardRef: in.IDCardRef}
	default:
		return fmt.Errorf("unknown verification method %q", in.Method)
	}

	*p = PendingRegistration{
		RegistrationNumber: in.RegistrationNumber,
		Email:              in.Email,
		Name:               in.Name,
		Gender:             in.Gender,
		Department:         in.Department,
		Program:            in.Program,
		PasswordHash:       in.PasswordHash,
		Verification:       v,
		CreatedAt:          in.CreatedAt,
		ExpiresAt:          in.ExpiresAt,
	}
	return nil
}
