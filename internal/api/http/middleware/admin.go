package middleware

import (
	"crypto/subtle"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
)

// AdminTokenHeader carries the shared administrator secret.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken lets through only requests presenting expectedToken.
// An empty expectedToken rejects everything.
func RequireAdminToken(expectedToken string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.Warn("Admin middleware: admin token mismatch",
					"request_id", chimw.GetReqID(r.Context()),
					"path", r.URL.Path)
				response.Error(w, apierror.NewErrUnauthorized("Admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
