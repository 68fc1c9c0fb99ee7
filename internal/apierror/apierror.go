// Package apierror defines client-facing errors and their HTTP mapping.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an APIError.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindDelivery     Kind = "delivery_error"
	KindInternal     Kind = "internal_error"
)

// APIError is an error that is safe to show to clients.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an APIError of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == k
}

// NewErrValidation reports malformed input. fields maps request fields to problems.
func NewErrValidation(message string, fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Fields: fields}
}

// NewErrInvalidField reports a single malformed field.
func NewErrInvalidField(field, message string) *APIError {
	return NewErrValidation(message, map[string]string{field: message})
}

// NewErrRegistrationNumberTaken reports a duplicate registration.
func NewErrRegistrationNumberTaken(registrationNumber string, cause error) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Status:  http.StatusConflict,
		Message: "Registration number already exists",
		Fields:  map[string]string{"registrationNumber": registrationNumber},
		Err:     cause,
	}
}

// NewErrPendingRegistrationNotFound reports a missing, expired or mismatched staged signup.
func NewErrPendingRegistrationNotFound(cause error) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Status:  http.StatusBadRequest,
		Message: "Invalid or missing temporary user data",
		Err:     cause,
	}
}

// NewErrUserNotFound reports an unknown permanent user.
func NewErrUserNotFound(registrationNumber string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: "User not found",
		Fields:  map[string]string{"registrationNumber": registrationNumber},
	}
}

// NewErrIDCardNotFound reports a user without an uploaded ID card.
func NewErrIDCardNotFound(registrationNumber string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: "No University ID found for this user",
		Fields:  map[string]string{"registrationNumber": registrationNumber},
	}
}

// NewErrRouteNotFound reports a request for an unknown path.
func NewErrRouteNotFound() *APIError {
	return &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Message: "Route not found"}
}

// NewErrMethodNotAllowed reports a known path requested with the wrong method.
func NewErrMethodNotAllowed() *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusMethodNotAllowed, Message: "Method not allowed"}
}

// NewErrInvalidOTP reports a missing, expired or wrong one-time code.
func NewErrInvalidOTP(cause error) *APIError {
	return &APIError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: "Invalid or expired OTP", Err: cause}
}

// NewErrInvalidCredentials reports a failed login without saying which field was wrong.
func NewErrInvalidCredentials(cause error) *APIError {
	return &APIError{
		Kind:    KindUnauthorized,
		Status:  http.StatusUnauthorized,
		Message: "Invalid registration number or password",
		Err:     cause,
	}
}

// NewErrUnauthorized reports a missing or invalid bearer credential.
func NewErrUnauthorized(message string) *APIError {
	return &APIError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

// NewErrIDCardState reports an approval that cannot be applied to the user's ID card.
func NewErrIDCardState(message string, cause error) *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Err: cause}
}

// NewErrDelivery reports an email transport failure.
func NewErrDelivery(cause error) *APIError {
	return &APIError{Kind: KindDelivery, Status: http.StatusInternalServerError, Message: "Failed to send OTP", Err: cause}
}

// NewErrInternalServerError hides cause behind a generic message.
func NewErrInternalServerError(cause error) *APIError {
	return &APIError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Server error", Err: cause}
}

// FieldsMessage joins field problems into one deterministic sentence.
func FieldsMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
