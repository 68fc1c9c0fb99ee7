package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
)

const maxJSONBodyBytes = 1 << 20

// handleError logs err and writes it to the client. Causes of internal
// errors are logged but never sent.
func handleError(w http.ResponseWriter, r *http.Request, logger *logger.Logger, op string, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.NewErrInternalServerError(err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error(op+" failed",
			"request_id", chimw.GetReqID(r.Context()),
			"error", err.Error())
	} else {
		logger.Debug(op+" rejected",
			"request_id", chimw.GetReqID(r.Context()),
			"kind", string(apiErr.Kind),
			"message", apiErr.Message)
	}

	response.Error(w, apiErr)
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apierror.NewErrValidation("Request body is empty", nil)
		case errors.As(err, &maxErr):
			return apierror.NewErrValidation(
				fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), nil)
		default:
			return apierror.NewErrValidation("Request body is not valid JSON", nil)
		}
	}
	return nil
}
