package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuisports/sportsreg/internal/testutil"
)

func TestRequireAdminToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configured string
		presented  string
		wantStatus int
	}{
		{name: "matching token", configured: "s3cret", presented: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong token", configured: "s3cret", presented: "guess", wantStatus: http.StatusUnauthorized},
		{name: "missing header", configured: "s3cret", presented: "", wantStatus: http.StatusUnauthorized},
		{name: "prefix of token", configured: "s3cret", presented: "s3c", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured token rejects everything", configured: "", presented: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := RequireAdminToken(tt.configured, testutil.MakeNoopLogger())(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			req := httptest.NewRequest(http.MethodPost, "/auth/approve-id/FA23-BSE-007", nil)
			if tt.presented != "" {
				req.Header.Set(AdminTokenHeader, tt.presented)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
