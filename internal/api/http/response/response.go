// Package response writes JSON bodies for the HTTP API.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cuisports/sportsreg/internal/apierror"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   apierror.Kind     `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as an ErrorBody. Errors that are not APIErrors become a
// generic 500 so internal details never reach the client.
func Error(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierror.NewErrInternalServerError(err)
	}

	JSON(w, apiErr.Status, ErrorBody{
		Error:   apiErr.Kind,
		Message: apiErr.Message,
		Fields:  apiErr.Fields,
	})
}
