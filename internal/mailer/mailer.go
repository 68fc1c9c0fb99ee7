// Package mailer delivers one-time codes by email.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/model"
)

const otpSubject = "Your OTP Code - COMSATS Sports Society"

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Options configures an SMTP mailer.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

var _ model.Mailer = (*SMTP)(nil)

// SMTP sends mail through an authenticated SMTP relay.
type SMTP struct {
	addr string
	auth smtp.Auth
	from *mail.Address
	send SendFunc
	now  func() time.Time
}

// NewSMTP validates opts and returns a mailer.
func NewSMTP(opts Options) (*SMTP, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	from, err := mail.ParseAddress(opts.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", opts.From, err)
	}

	var auth smtp.Auth
	if opts.User != "" {
		auth = smtp.PlainAuth("", opts.User, opts.Password, opts.Host)
	}

	return &SMTP{
		addr: net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		auth: auth,
		from: from,
		send: smtp.SendMail,
		now:  time.Now,
	}, nil
}

// SendOTP emails code to the student. ctx bounds the wait, the dial itself
// runs to completion in the background.
func (m *SMTP) SendOTP(ctx context.Context, to, code string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	msg := buildMessage(m.from, to, otpSubject, otpHTML(code), m.now())

	done := make(chan error, 1)
	go func() {
		done <- m.send(m.addr, m.auth, m.from.Address, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send otp email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send otp email: %w", ctx.Err())
	}
}

func otpHTML(code string) string {
	return "<p>Your OTP is: <strong>" + code + "</strong></p>" +
		"<p>It expires in " + strconv.Itoa(int(model.OTPValidity/time.Minute)) + " minutes.</p>"
}

func buildMessage(from *mail.Address, to, subject, html string, date time.Time) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from.String() + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(html)
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

var _ model.Mailer = (*Log)(nil)

// Log writes codes to the application log instead of sending them. Used when
// no SMTP host is configured.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (m *Log) SendOTP(_ context.Context, to, code string) error {
	m.log.Debug("smtp not configured, otp not emailed", "to", to, "otp", code)
	return nil
}
