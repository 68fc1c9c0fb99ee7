package handler

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/logger"
)

// Admin handles ID card review endpoints. Routes are expected to sit behind
// the admin token middleware.
type Admin struct {
	registration RegistrationService
	logger       *logger.Logger
}

func NewAdmin(registration RegistrationService, logger *logger.Logger) *Admin {
	return &Admin{registration: registration, logger: logger}
}

// ApproveID marks the stored ID card of {regNo} as verified.
func (h *Admin) ApproveID(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "regNo")

	user, err := h.registration.ApproveID(r.Context(), regNo)
	if err != nil {
		handleError(w, r, h.logger, "Admin handler: approve id", err)
		return
	}

	h.logger.Info("Admin handler: id card approved",
		"registration_number", user.RegistrationNumber)

	response.JSON(w, http.StatusOK, messageResponse{
		Message: "University ID approved for " + user.RegistrationNumber,
	})
}

// IDCard streams the stored ID card of {regNo}.
func (h *Admin) IDCard(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "regNo")

	card, err := h.registration.IDCard(r.Context(), regNo)
	if err != nil {
		handleError(w, r, h.logger, "Admin handler: id card", err)
		return
	}
	defer card.Body.Close()

	contentType := mime.TypeByExtension(path.Ext(card.Key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": path.Base(card.Key),
	}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, card.Body); err != nil {
		h.logger.Warn("Admin handler: id card stream interrupted",
			"registration_number", regNo,
			"error", err.Error())
	}
}
