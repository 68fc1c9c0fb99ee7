package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/regno"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72
	maxNameLength     = 100
	idCardKeyPrefix   = "id-cards/"
)

// IDCardContentTypes lists the accepted ID card upload types and their file extensions.
var IDCardContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// SignupInput is the data a student submits to start registration.
type SignupInput struct {
	RegistrationNumber string `json:"registrationNumber"`
	Name               string `json:"name"`
	Gender             string `json:"gender"`
	Department         string `json:"department"`
	Program            string `json:"program"`
	Password           string `json:"password"`
	VerificationMethod string `json:"verificationMethod"`
}

// UploadResult is returned after an ID card upload promoted the student.
type UploadResult struct {
	User    model.User
	FileURL string
}

// IDCardFile is a stored ID card opened for reading. The caller closes Body.
type IDCardFile struct {
	Key  string
	Body io.ReadCloser
}

// Registration drives a pending signup through verification into a permanent user.
type Registration struct {
	users      model.UserStore
	pending    model.PendingStore
	storage    model.Storage
	hasher     model.PasswordHasher
	otp        *OTP
	codec      *regno.Codec
	locks      *keyLock
	pendingTTL time.Duration
	now        func() time.Time
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewRegistration(
	users model.UserStore,
	pending model.PendingStore,
	storage model.Storage,
	hasher model.PasswordHasher,
	otp *OTP,
	codec *regno.Codec,
	pendingTTL time.Duration,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Registration {
	if pendingTTL <= 0 {
		pendingTTL = model.PendingRegistrationTTL
	}
	return &Registration{
		users:      users,
		pending:    pending,
		storage:    storage,
		hasher:     hasher,
		otp:        otp,
		codec:      codec,
		locks:      newKeyLock(),
		pendingTTL: pendingTTL,
		now:        time.Now,
		logger:     logger,
		metrics:    m,
	}
}

func stringValues(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (r *Registration) validateSignup(in SignupInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.RegistrationNumber, validation.Required, validation.By(func(value interface{}) error {
			if !r.codec.Validate(value.(string)) {
				return errors.New("invalid registration number format or year")
			}
			return nil
		})),
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Gender, validation.Required, validation.In(stringValues(model.Genders)...)),
		validation.Field(&in.Department, validation.Required, validation.In(stringValues(model.Departments)...)),
		validation.Field(&in.Program, validation.Required, validation.In(stringValues(regno.Programs)...)),
		validation.Field(&in.Password, validation.Required,
			validation.RuneLength(minPasswordLength, 0),
			// bcrypt only hashes the first 72 bytes.
			validation.Length(0, maxPasswordBytes)),
		validation.Field(&in.VerificationMethod, validation.Required, validation.In(stringValues(model.VerificationMethods)...)),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return apierror.NewErrInternalServerError(err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for name, fieldErr := range fieldErrs {
		fields[name] = fieldErr.Error()
	}
	return apierror.NewErrValidation(apierror.FieldsMessage(fields), fields)
}

// SignupInit validates in and stages a pending registration. It returns the
// institutional email the student will be contacted on.
func (r *Registration) SignupInit(ctx context.Context, in SignupInput) (string, error) {
	in.RegistrationNumber = regno.Normalize(in.RegistrationNumber)
	in.Name = strings.TrimSpace(in.Name)

	r.logger.Debug("Registration service: starting signup",
		"registration_number", in.RegistrationNumber,
		"method", in.VerificationMethod)

	if err := r.validateSignup(in); err != nil {
		r.logger.Info("Registration service: signup rejected",
			"registration_number", in.RegistrationNumber,
			"error", err.Error())
		return "", err
	}

	canonical, err := r.codec.ToCanonical(in.RegistrationNumber)
	if err != nil {
		return "", apierror.NewErrInvalidField("registrationNumber", err.Error())
	}

	unlock := r.locks.Lock(in.RegistrationNumber)
	defer unlock()

	_, err = r.users.GetByRegistrationNumber(ctx, canonical)
	switch {
	case err == nil:
		r.logger.Info("Registration service: registration number already taken",
			"registration_number", canonical)
		return "", apierror.NewErrRegistrationNumberTaken(canonical, model.ErrConflict)
	case !errors.Is(err, model.ErrNotFound):
		r.logger.Error("Registration service: failed to look up user",
			"registration_number", canonical,
			"error", err.Error())
		return "", apierror.NewErrInternalServerError(fmt.Errorf("failed to get user: %w", err))
	}

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		r.logger.Error("Registration service: failed to hash password",
			"registration_number", in.RegistrationNumber,
			"error", err.Error())
		return "", apierror.NewErrInternalServerError(err)
	}

	verification, err := model.NewVerification(model.VerificationMethod(in.VerificationMethod))
	if err != nil {
		return "", apierror.NewErrInvalidField("verificationMethod", err.Error())
	}

	now := r.now()
	pending := model.PendingRegistration{
		RegistrationNumber: in.RegistrationNumber,
		Email:              r.codec.DeriveEmail(in.RegistrationNumber),
		Name:               in.Name,
		Gender:             in.Gender,
		Department:         in.Department,
		Program:            in.Program,
		PasswordHash:       hash,
		Verification:       verification,
		CreatedAt:          now,
		ExpiresAt:          now.Add(r.pendingTTL),
	}

	if err := r.pending.Put(ctx, pending); err != nil {
		r.logger.Error("Registration service: failed to stage signup",
			"registration_number", in.RegistrationNumber,
			"error", err.Error())
		return "", apierror.NewErrInternalServerError(fmt.Errorf("failed to store pending registration: %w", err))
	}

	r.metrics.IncSignupStarted(in.VerificationMethod)
	r.logger.Info("Registration service: signup staged",
		"registration_number", in.RegistrationNumber,
		"method", in.VerificationMethod)

	return pending.Email, nil
}

// loadPending returns the staged record under key if it uses method.
func (r *Registration) loadPending(ctx context.Context, key string, method model.VerificationMethod) (model.PendingRegistration, error) {
	pending, err := r.pending.Get(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.PendingRegistration{}, apierror.NewErrPendingRegistrationNotFound(err)
		}
		r.logger.Error("Registration service: failed to load pending registration",
			"registration_number", key,
			"error", err.Error())
		return model.PendingRegistration{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to get pending registration: %w", err))
	}

	if pending.Method() != method {
		return model.PendingRegistration{}, apierror.NewErrPendingRegistrationNotFound(
			fmt.Errorf("%s uses %s: %w", key, pending.Method(), model.ErrWrongVerificationMethod))
	}

	return pending, nil
}

func requireRegistrationNumber(raw string) (string, error) {
	key := regno.Normalize(raw)
	if key == "" {
		return "", apierror.NewErrInvalidField("registrationNumber", "cannot be blank")
	}
	return key, nil
}

// SendOTP issues a fresh code for an OTP signup, replacing any earlier one.
func (r *Registration) SendOTP(ctx context.Context, registrationNumber string) error {
	key, err := requireRegistrationNumber(registrationNumber)
	if err != nil {
		return err
	}

	unlock := r.locks.Lock(key)
	defer unlock()

	pending, err := r.loadPending(ctx, key, model.MethodOTP)
	if err != nil {
		return err
	}

	code, err := r.otp.Attach(&pending)
	if err != nil {
		return apierror.NewErrInternalServerError(err)
	}

	if err := r.pending.Put(ctx, pending); err != nil {
		r.logger.Error("Registration service: failed to store otp challenge",
			"registration_number", key,
			"error", err.Error())
		return apierror.NewErrInternalServerError(fmt.Errorf("failed to store pending registration: %w", err))
	}

	if err := r.otp.Deliver(ctx, pending.Email, code); err != nil {
		return err
	}

	r.logger.Info("Registration service: otp sent",
		"registration_number", key)

	return nil
}

// VerifyOTP checks code and promotes the signup on success.
func (r *Registration) VerifyOTP(ctx context.Context, registrationNumber, code string) (model.User, error) {
	key, err := requireRegistrationNumber(registrationNumber)
	if err != nil {
		return model.User{}, err
	}
	if code == "" {
		return model.User{}, apierror.NewErrInvalidField("otp", "cannot be blank")
	}

	unlock := r.locks.Lock(key)
	defer unlock()

	pending, err := r.loadPending(ctx, key, model.MethodOTP)
	if err != nil {
		return model.User{}, err
	}

	if err := r.otp.Verify(&pending, code); err != nil {
		r.logger.Info("Registration service: otp rejected",
			"registration_number", key,
			"error", err.Error())
		return model.User{}, apierror.NewErrInvalidOTP(err)
	}

	return r.promote(ctx, pending, nil)
}

// UploadID stores the student's ID card and promotes the signup immediately.
// The card itself stays unapproved until ApproveID.
func (r *Registration) UploadID(ctx context.Context, registrationNumber string, upload model.Upload) (UploadResult, error) {
	key, err := requireRegistrationNumber(registrationNumber)
	if err != nil {
		return UploadResult{}, err
	}
	if upload.Reader == nil || upload.Size == 0 {
		return UploadResult{}, apierror.NewErrInvalidField("universityIdCard", "No universityIdCard file uploaded")
	}
	ext, ok := IDCardContentTypes[upload.ContentType]
	if !ok {
		return UploadResult{}, apierror.NewErrInvalidField("universityIdCard",
			fmt.Sprintf("unsupported file type %q", upload.ContentType))
	}

	unlock := r.locks.Lock(key)
	defer unlock()

	pending, err := r.loadPending(ctx, key, model.MethodUniversityID)
	if err != nil {
		return UploadResult{}, err
	}

	canonical, err := r.codec.ToCanonical(pending.RegistrationNumber)
	if err != nil {
		return UploadResult{}, apierror.NewErrInternalServerError(err)
	}

	fileRef := idCardKeyPrefix + canonical + "-" + uuid.NewString() + ext
	if err := r.storage.Upload(ctx, fileRef, upload.Reader, upload.Size, upload.ContentType); err != nil {
		r.logger.Error("Registration service: failed to store id card",
			"registration_number", key,
			"file", path.Base(upload.Filename),
			"error", err.Error())
		return UploadResult{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to upload id card: %w", err))
	}

	pending.Verification = model.UniversityIDVerification{IDCardRef: fileRef}
	user, err := r.promote(ctx, pending, &model.IDCard{FileRef: fileRef})
	if err != nil {
		if delErr := r.storage.Delete(ctx, fileRef); delErr != nil {
			r.logger.Warn("Registration service: failed to remove orphaned id card",
				"file_ref", fileRef,
				"error", delErr.Error())
		}
		return UploadResult{}, err
	}

	return UploadResult{User: user, FileURL: r.storage.URL(fileRef)}, nil
}

// promote writes pending as a permanent user and then evicts it. The user
// store's unique constraint decides concurrent or repeated promotions.
func (r *Registration) promote(ctx context.Context, pending model.PendingRegistration, card *model.IDCard) (model.User, error) {
	canonical, err := r.codec.ToCanonical(pending.RegistrationNumber)
	if err != nil {
		return model.User{}, apierror.NewErrInternalServerError(err)
	}

	user, err := r.users.Create(ctx, model.User{
		RegistrationNumber: canonical,
		Email:              pending.Email,
		Name:               pending.Name,
		Gender:             pending.Gender,
		Department:         pending.Department,
		Program:            pending.Program,
		PasswordHash:       pending.PasswordHash,
		VerificationMethod: pending.Method(),
		IDCard:             card,
		IsVerified:         true,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			r.logger.Warn("Registration service: user already promoted, dropping stale pending registration",
				"registration_number", canonical)
			r.dropPending(ctx, pending.RegistrationNumber)
			return model.User{}, apierror.NewErrRegistrationNumberTaken(canonical, err)
		}
		r.logger.Error("Registration service: failed to create user",
			"registration_number", canonical,
			"error", err.Error())
		return model.User{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to create user: %w", err))
	}

	r.dropPending(ctx, pending.RegistrationNumber)

	r.metrics.IncUserRegistered(string(pending.Method()))
	r.logger.Info("Registration service: user registered",
		"registration_number", canonical,
		"user_id", user.ID.String(),
		"method", string(pending.Method()))

	return user, nil
}

func (r *Registration) dropPending(ctx context.Context, key string) {
	if err := r.pending.Delete(ctx, key); err != nil {
		r.logger.Warn("Registration service: failed to delete pending registration",
			"registration_number", key,
			"error", err.Error())
	}
}

// lookupUser canonicalizes raw and loads the permanent user.
func (r *Registration) lookupUser(ctx context.Context, raw string) (model.User, error) {
	key := regno.Normalize(raw)
	canonical, err := r.codec.ToCanonical(key)
	if err != nil {
		return model.User{}, apierror.NewErrUserNotFound(key)
	}

	user, err := r.users.GetByRegistrationNumber(ctx, canonical)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierror.NewErrUserNotFound(canonical)
		}
		r.logger.Error("Registration service: failed to look up user",
			"registration_number", canonical,
			"error", err.Error())
		return model.User{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to get user: %w", err))
	}

	return user, nil
}

// ApproveID marks the user's uploaded ID card as verified.
func (r *Registration) ApproveID(ctx context.Context, registrationNumber string) (model.User, error) {
	user, err := r.lookupUser(ctx, registrationNumber)
	if err != nil {
		return model.User{}, err
	}

	if user.IDCard == nil {
		return model.User{}, apierror.NewErrIDCardState("No University ID found for this user", model.ErrNoIDCard)
	}
	if user.IDCard.Verified {
		return model.User{}, apierror.NewErrIDCardState("University ID already verified", model.ErrAlreadyVerified)
	}

	exists, err := r.storage.Exists(ctx, user.IDCard.FileRef)
	if err != nil {
		r.logger.Error("Registration service: failed to check id card",
			"registration_number", user.RegistrationNumber,
			"error", err.Error())
		return model.User{}, apierror.NewErrInternalServerError(err)
	}
	if !exists {
		return model.User{}, apierror.NewErrIDCardState("University ID file is missing", model.ErrIDCardMissing)
	}

	user.IDCard.Verified = true
	updated, err := r.users.Update(ctx, user)
	if err != nil {
		r.logger.Error("Registration service: failed to approve id card",
			"registration_number", user.RegistrationNumber,
			"error", err.Error())
		return model.User{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to update user: %w", err))
	}

	r.metrics.IncIDCardApproved()
	r.logger.Info("Registration service: id card approved",
		"registration_number", user.RegistrationNumber)

	return updated, nil
}

// IDCard opens the stored ID card of a user for review.
func (r *Registration) IDCard(ctx context.Context, registrationNumber string) (IDCardFile, error) {
	user, err := r.lookupUser(ctx, registrationNumber)
	if err != nil {
		return IDCardFile{}, err
	}
	if user.IDCard == nil {
		return IDCardFile{}, apierror.NewErrIDCardNotFound(user.RegistrationNumber)
	}

	body, err := r.storage.Download(ctx, user.IDCard.FileRef)
	if err != nil {
		r.logger.Error("Registration service: failed to download id card",
			"registration_number", user.RegistrationNumber,
			"error", err.Error())
		return IDCardFile{}, apierror.NewErrInternalServerError(err)
	}

	return IDCardFile{Key: user.IDCard.FileRef, Body: body}, nil
}
