// Package middleware holds the HTTP middleware of the API.
package middleware

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/model"
)

// TokenService validates bearer tokens.
type TokenService interface {
	ParseToken(token string) (model.TokenClaims, error)
}

// Authenticate validates bearer tokens and stores their claims on the request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid "Authorization: Bearer" header.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			response.Error(w, apierror.NewErrUnauthorized("Missing authorization token"))
			return
		}

		claims, err := m.tokenService.ParseToken(token)
		if err != nil {
			m.logger.Debug("Authenticate middleware: token rejected",
				"request_id", chimw.GetReqID(r.Context()),
				"error", err.Error())
			response.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetClaimsToContext(r.Context(), claims)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
