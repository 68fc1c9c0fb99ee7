package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/logger"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports service liveness.
type Health struct {
	db      Pinger
	timeout time.Duration
	logger  *logger.Logger
}

func NewHealth(db Pinger, logger *logger.Logger) *Health {
	return &Health{db: db, timeout: 2 * time.Second, logger: logger}
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("Health handler: database unreachable",
				"error", err.Error())
			response.JSON(w, http.StatusServiceUnavailable, healthResponse{
				OK:      false,
				Message: "Database unavailable",
			})
			return
		}
	}

	response.JSON(w, http.StatusOK, healthResponse{
		OK:      true,
		Message: "API is working",
	})
}

// Database readiness states reported by DBStatus.
const (
	dbDisconnected = 0
	dbConnected    = 1
)

type dbStatusResponse struct {
	DBReadyState int `json:"dbReadyState"`
}

// DBStatus reports the database connection state without failing the request.
func (h *Health) DBStatus(w http.ResponseWriter, r *http.Request) {
	state := dbDisconnected
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.db.Ping(ctx); err == nil {
			state = dbConnected
		}
	}

	response.JSON(w, http.StatusOK, dbStatusResponse{DBReadyState: state})
}
