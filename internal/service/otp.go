package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
)

const otpDigits = 6

var otpSpace = big.NewInt(1_000_000)

// OTP issues and checks emailed one-time codes on pending registrations.
type OTP struct {
	mailer  model.Mailer
	random  io.Reader
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOTP(mailer model.Mailer, logger *logger.Logger, m *metrics.Metrics) *OTP {
	return &OTP{
		mailer:  mailer,
		random:  rand.Reader,
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
}

// Attach generates a fresh code and sets it as the only challenge of pending.
func (o *OTP) Attach(pending *model.PendingRegistration) (string, error) {
	if _, ok := pending.Verification.(model.OTPVerification); !ok {
		return "", fmt.Errorf("attach otp to %s: %w", pending.RegistrationNumber, model.ErrWrongVerificationMethod)
	}

	n, err := rand.Int(o.random, otpSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())

	pending.Verification = model.OTPVerification{Challenge: &model.OTPChallenge{
		Code:      code,
		ExpiresAt: o.now().Add(model.OTPValidity),
	}}

	return code, nil
}

// Deliver emails code to email.
func (o *OTP) Deliver(ctx context.Context, email, code string) error {
	if err := o.mailer.SendOTP(ctx, email, code); err != nil {
		o.logger.Error("OTP service: failed to deliver otp",
			"email", email,
			"error", err.Error())
		o.metrics.IncOTPDeliveryFailure()
		return apierror.NewErrDelivery(err)
	}

	o.metrics.IncOTPSent()
	return nil
}

// Issue attaches a new code and delivers it. On delivery failure the code stays attached.
func (o *OTP) Issue(ctx context.Context, pending *model.PendingRegistration) (string, error) {
	code, err := o.Attach(pending)
	if err != nil {
		return "", err
	}
	if err := o.Deliver(ctx, pending.Email, code); err != nil {
		return code, err
	}
	return code, nil
}

// Verify checks supplied against the active challenge and consumes it on success.
// On failure pending is left untouched.
func (o *OTP) Verify(pending *model.PendingRegistration, supplied string) error {
	v, ok := pending.Verification.(model.OTPVerification)
	if !ok {
		return model.ErrWrongVerificationMethod
	}
	if v.Challenge == nil {
		return model.ErrNoChallenge
	}
	if o.now().After(v.Challenge.ExpiresAt) {
		return model.ErrChallengeExpired
	}
	if subtle.ConstantTimeCompare([]byte(v.Challenge.Code), []byte(supplied)) != 1 {
		return model.ErrChallengeMismatch
	}

	pending.Verification = model.OTPVerification{}
	return nil
}
