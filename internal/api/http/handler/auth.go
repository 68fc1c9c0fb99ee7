// Package handler implements the HTTP endpoints of the registration API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/service"
)

// RegistrationService defines the signup and verification operations.
type RegistrationService interface {
	SignupInit(ctx context.Context, in service.SignupInput) (string, error)
	SendOTP(ctx context.Context, registrationNumber string) error
	VerifyOTP(ctx context.Context, registrationNumber, code string) (model.User, error)
	UploadID(ctx context.Context, registrationNumber string, upload model.Upload) (service.UploadResult, error)
	ApproveID(ctx context.Context, registrationNumber string) (model.User, error)
	IDCard(ctx context.Context, registrationNumber string) (service.IDCardFile, error)
}

// AuthService defines login and profile operations.
type AuthService interface {
	Login(ctx context.Context, registrationNumber, password string) (service.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// Auth handles the /auth endpoints used by students.
type Auth struct {
	registration   RegistrationService
	auth           AuthService
	contextManager model.ContextManager
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	registration RegistrationService,
	auth AuthService,
	contextManager model.ContextManager,
	maxUploadBytes int64,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		registration:   registration,
		auth:           auth,
		contextManager: contextManager,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type signupInitResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type registrationNumberRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
}

type verifyOTPRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
	OTP                string `json:"otp"`
}

type uploadIDResponse struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

type loginRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
	Password           string `json:"password"`
}

type loginUser struct {
	RegistrationNumber string `json:"registrationNumber"`
	Email              string `json:"email"`
	Gender             string `json:"gender"`
	Program            string `json:"program"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

type idCardResponse struct {
	Verified bool `json:"verified"`
}

type profileResponse struct {
	ID                 uuid.UUID       `json:"id"`
	RegistrationNumber string          `json:"registrationNumber"`
	Email              string          `json:"email"`
	Name               string          `json:"name"`
	Gender             string          `json:"gender"`
	Department         string          `json:"department"`
	Program            string          `json:"program"`
	VerificationMethod string          `json:"verificationMethod"`
	IsVerified         bool            `json:"isVerified"`
	IDCard             *idCardResponse `json:"universityIdCard,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// SignupInit stages a new signup.
func (h *Auth) SignupInit(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, "Auth handler: signup init", err)
		return
	}

	email, err := h.registration.SignupInit(r.Context(), req)
	if err != nil {
		handleError(w, r, h.logger, "Auth handler: signup init", err)
		return
	}

	response.JSON(w, http.StatusOK, signupInitResponse{
		Message: "Initial signup successful, proceed to verification",
		Email:   email,
	})
}

// SendOTP emails a one-time code to a pending OTP signup.
func (h *Auth) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req registrationNumberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, "Auth handler: send otp", err)
		return
	}

	if err := h.registration.SendOTP(r.Context(), req.RegistrationNumber); err != nil {
		handleError(w, r, h.logger, "Auth handler: send otp", err)
		return
	}

	response.JSON(w, http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

// VerifyOTP checks the code and registers the student.
func (h *Auth) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, "Auth handler: verify otp", err)
		return
	}

	if _, err := h.registration.VerifyOTP(r.Context(), req.RegistrationNumber, req.OTP); err != nil {
		handleError(w, r, h.logger, "Auth handler: verify otp", err)
		return
	}

	response.JSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// UploadID accepts a multipart form with registrationNumber and the
// universityIdCard file, and registers the student.
func (h *Auth) UploadID(w http.ResponseWriter, r *http.Request) {
	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+maxJSONBodyBytes)

	file, header, err := r.FormFile("universityIdCard")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			err = apierror.NewErrInvalidField("universityIdCard", "File is too large")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			err = apierror.NewErrInvalidField("universityIdCard", "No universityIdCard file uploaded")
		default:
			err = apierror.NewErrValidation("Request body is not a valid multipart form", nil)
		}
		handleError(w, r, h.logger, "Auth handler: upload id", err)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		handleError(w, r, h.logger, "Auth handler: upload id",
			apierror.NewErrInvalidField("universityIdCard", "File is too large"))
		return
	}

	contentType, err := sniffContentType(file, header.Header.Get("Content-Type"))
	if err != nil {
		handleError(w, r, h.logger, "Auth handler: upload id", err)
		return
	}

	result, err := h.registration.UploadID(r.Context(), r.FormValue("registrationNumber"), model.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		handleError(w, r, h.logger, "Auth handler: upload id", err)
		return
	}

	response.JSON(w, http.StatusCreated, uploadIDResponse{
		Message: "User registered successfully with University ID",
		FileURL: result.FileURL,
	})
}

// Login exchanges credentials for a bearer token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, "Auth handler: login", err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.RegistrationNumber, req.Password)
	if err != nil {
		handleError(w, r, h.logger, "Auth handler: login", err)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   session.Token,
		User: loginUser{
			RegistrationNumber: session.RegistrationNumber,
			Email:              session.User.Email,
			Gender:             session.User.Gender,
			Program:            session.User.Program,
		},
	})
}

// Me returns the profile of the authenticated student.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.contextManager.GetClaimsFromContext(r.Context())
	if !ok {
		handleError(w, r, h.logger, "Auth handler: me", apierror.NewErrUnauthorized("Missing authorization token"))
		return
	}

	user, err := h.auth.Me(r.Context(), claims.UserID)
	if err != nil {
		handleError(w, r, h.logger, "Auth handler: me", err)
		return
	}

	response.JSON(w, http.StatusOK, newProfileResponse(user))
}

func newProfileResponse(user model.User) profileResponse {
	out := profileResponse{
		ID:                 user.ID,
		RegistrationNumber: user.RegistrationNumber,
		Email:              user.Email,
		Name:               user.Name,
		Gender:             user.Gender,
		Department:         user.Department,
		Program:            user.Program,
		VerificationMethod: string(user.VerificationMethod),
		IsVerified:         user.IsVerified,
		CreatedAt:          user.CreatedAt,
	}
	if user.IDCard != nil {
		out.IDCard = &idCardResponse{Verified: user.IDCard.Verified}
	}
	return out
}
