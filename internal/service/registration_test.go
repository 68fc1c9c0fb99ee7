package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/metrics"
	servermocks "github.com/cuisports/sportsreg/internal/mocks"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/password"
	"github.com/cuisports/sportsreg/internal/regno"
	"github.com/cuisports/sportsreg/internal/repository/memory"
	"github.com/cuisports/sportsreg/internal/testutil"
)

const testEmail = "fa23-bse-007@cuiwah.edu.pk"

type regFixture struct {
	reg     *Registration
	users   *memory.UserRepository
	pending *memory.PendingRepository
	mailer  *servermocks.Mailer
	storage *servermocks.Storage
	clock   *fakeClock
}

func newRegFixture(t *testing.T) *regFixture {
	clock := newFakeClock()
	users := memory.NewUserRepository()
	pending := memory.NewPendingRepositoryWithClock(clock.Now)
	mailer := servermocks.NewMailer(t)
	storage := servermocks.NewStorage(t)
	log := testutil.MakeNoopLogger()
	m := metrics.New()

	otp := NewOTP(mailer, log, m)
	otp.now = clock.Now

	reg := NewRegistration(users, pending, storage, password.NewBcrypt(bcrypt.MinCost), otp,
		regno.NewCodecWithClock(clock.Now), time.Hour, log, m)
	reg.now = clock.Now

	return &regFixture{reg: reg, users: users, pending: pending, mailer: mailer, storage: storage, clock: clock}
}

func signupInput(method model.VerificationMethod) SignupInput {
	return SignupInput{
		RegistrationNumber: "FA23-BSE-007",
		Name:               "Ayesha Khan",
		Gender:             "Female",
		Department:         "Computer Science",
		Program:            "BSE",
		Password:           "s3cure-pass",
		VerificationMethod: string(method),
	}
}

// expectOTP captures every code mailed to email.
func (f *regFixture) expectOTP(email string, sendErr error) *[]string {
	codes := &[]string{}
	f.mailer.On("SendOTP", mock.Anything, email, sixDigitsMatcher()).
		Run(func(args mock.Arguments) { *codes = append(*codes, args.String(2)) }).
		Return(sendErr)
	return codes
}

func TestRegistration_SignupInit(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)

	in := signupInput(model.MethodOTP)
	in.RegistrationNumber = "  fa23-bse-007 "
	email, err := f.reg.SignupInit(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, testEmail, email)

	p, err := f.pending.Get(ctx, "FA23-BSE-007")
	require.NoError(t, err)
	assert.Equal(t, "FA23-BSE-007", p.RegistrationNumber)
	assert.Equal(t, testEmail, p.Email)
	assert.Equal(t, model.MethodOTP, p.Method())
	assert.NotEqual(t, "s3cure-pass", p.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("s3cure-pass")))
	assert.Equal(t, f.clock.Now().Add(time.Hour), p.ExpiresAt)
	assert.Nil(t, challengeOf(t, p))
	assert.Equal(t, 0, f.users.Count())
}

func TestRegistration_SignupInit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*SignupInput)
		field string
	}{
		{name: "year before first batch", edit: func(in *SignupInput) { in.RegistrationNumber = "FA21-BSE-007" }, field: "registrationNumber"},
		{name: "future year", edit: func(in *SignupInput) { in.RegistrationNumber = "SP26-BSE-007" }, field: "registrationNumber"},
		{name: "malformed", edit: func(in *SignupInput) { in.RegistrationNumber = "FA23BSE007" }, field: "registrationNumber"},
		{name: "missing registration number", edit: func(in *SignupInput) { in.RegistrationNumber = "" }, field: "registrationNumber"},
		{name: "missing name", edit: func(in *SignupInput) { in.Name = "   " }, field: "name"},
		{name: "unknown gender", edit: func(in *SignupInput) { in.Gender = "Unknown" }, field: "gender"},
		{name: "unknown department", edit: func(in *SignupInput) { in.Department = "Physics" }, field: "department"},
		{name: "unknown program", edit: func(in *SignupInput) { in.Program = "XYZ" }, field: "program"},
		{name: "short password", edit: func(in *SignupInput) { in.Password = "1234567" }, field: "password"},
		{name: "short multibyte password", edit: func(in *SignupInput) { in.Password = strings.Repeat("é", 4) }, field: "password"},
		{name: "password over bcrypt limit", edit: func(in *SignupInput) { in.Password = strings.Repeat("é", 37) }, field: "password"},
		{name: "unknown method", edit: func(in *SignupInput) { in.VerificationMethod = "SMS" }, field: "verificationMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegFixture(t)
			in := signupInput(model.MethodOTP)
			tt.edit(&in)

			_, err := f.reg.SignupInit(context.Background(), in)
			require.Error(t, err)

			apiErr, ok := apierror.As(err)
			require.True(t, ok)
			assert.Equal(t, apierror.KindValidation, apiErr.Kind)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Contains(t, apiErr.Fields, tt.field)
			assert.Equal(t, 0, f.pending.Len())
		})
	}
}

func TestRegistration_SignupInit_Conflict(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)

	_, err := f.users.Create(ctx, model.User{RegistrationNumber: "2023BSE007"})
	require.NoError(t, err)

	_, err = f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorIs(t, err, model.ErrConflict)
	assert.Equal(t, 0, f.pending.Len())
}

func TestRegistration_SignupInit_ReinitDiscardsChallenge(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)
	codes := f.expectOTP(testEmail, nil)

	_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
	require.NoError(t, err)
	require.NoError(t, f.reg.SendOTP(ctx, "FA23-BSE-007"))
	require.Len(t, *codes, 1)

	_, err = f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
	require.NoError(t, err)

	_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", (*codes)[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoChallenge)
}

func TestRegistration_OTPFlow(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)
	codes := f.expectOTP(testEmail, nil)

	_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
	require.NoError(t, err)

	require.NoError(t, f.reg.SendOTP(ctx, "fa23-bse-007"))
	require.Len(t, *codes, 1)

	user, err := f.reg.VerifyOTP(ctx, "FA23-BSE-007", (*codes)[0])
	require.NoError(t, err)
	assert.Equal(t, "2023BSE007", user.RegistrationNumber)
	assert.Equal(t, testEmail, user.Email)
	assert.Equal(t, "Ayesha Khan", user.Name)
	assert.Equal(t, model.MethodOTP, user.VerificationMethod)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.IDCard)

	_, err = f.pending.Get(ctx, "FA23-BSE-007")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, f.users.Count())

	_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", (*codes)[0])
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 1, f.users.Count())
}

func TestRegistration_VerifyOTP_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong code keeps pending", func(t *testing.T) {
		f := newRegFixture(t)
		codes := f.expectOTP(testEmail, nil)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
		require.NoError(t, err)
		require.NoError(t, f.reg.SendOTP(ctx, "FA23-BSE-007"))

		wrong := "000000"
		if (*codes)[0] == wrong {
			wrong = "999999"
		}
		_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", wrong)
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
		assert.ErrorIs(t, err, model.ErrChallengeMismatch)
		assert.Equal(t, 0, f.users.Count())

		p, err := f.pending.Get(ctx, "FA23-BSE-007")
		require.NoError(t, err)
		assert.Equal(t, (*codes)[0], challengeOf(t, p).Code)

		_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", (*codes)[0])
		require.NoError(t, err)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newRegFixture(t)
		codes := f.expectOTP(testEmail, nil)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
		require.NoError(t, err)
		require.NoError(t, f.reg.SendOTP(ctx, "FA23-BSE-007"))

		f.clock.Advance(11 * time.Minute)
		_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", (*codes)[0])
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrChallengeExpired)

		require.NoError(t, f.reg.SendOTP(ctx, "FA23-BSE-007"))
		require.Len(t, *codes, 2)
		_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", (*codes)[1])
		require.NoError(t, err)
	})

	t.Run("no code sent", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
		require.NoError(t, err)

		_, err = f.reg.VerifyOTP(ctx, "FA23-BSE-007", "123456")
		assert.ErrorIs(t, err, model.ErrNoChallenge)
		assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
	})

	t.Run("unknown registration", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.VerifyOTP(ctx, "FA23-BSE-007", "123456")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("blank code", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.VerifyOTP(ctx, "FA23-BSE-007", "")
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})
}

func TestRegistration_SendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown registration", func(t *testing.T) {
		f := newRegFixture(t)
		err := f.reg.SendOTP(ctx, "FA23-BSE-007")
		require.Error(t, err)
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "Invalid or missing temporary user data", apiErr.Message)
	})

	t.Run("id card signup", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodUniversityID))
		require.NoError(t, err)

		err = f.reg.SendOTP(ctx, "FA23-BSE-007")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrWrongVerificationMethod)
	})

	t.Run("blank registration number", func(t *testing.T) {
		f := newRegFixture(t)
		assert.True(t, apierror.IsKind(f.reg.SendOTP(ctx, "  "), apierror.KindValidation))
	})

	t.Run("delivery failure keeps challenge", func(t *testing.T) {
		f := newRegFixture(t)
		codes := f.expectOTP(testEmail, errors.New("smtp down"))
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
		require.NoError(t, err)

		err = f.reg.SendOTP(ctx, "FA23-BSE-007")
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindDelivery))

		p, err := f.pending.Get(ctx, "FA23-BSE-007")
		require.NoError(t, err)
		require.NotNil(t, challengeOf(t, p))
		assert.Equal(t, (*codes)[0], challengeOf(t, p).Code)
	})

	t.Run("pending expired", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
		require.NoError(t, err)

		f.clock.Advance(time.Hour + time.Second)
		err = f.reg.SendOTP(ctx, "FA23-BSE-007")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestRegistration_VerifyOTP_ConcurrentSinglePromotion(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)
	codes := f.expectOTP(testEmail, nil)

	_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
	require.NoError(t, err)
	require.NoError(t, f.reg.SendOTP(ctx, "FA23-BSE-007"))
	code := (*codes)[0]

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.reg.VerifyOTP(ctx, "FA23-BSE-007", code); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.users.Count())
}

func TestRegistration_Promote_ConflictDropsStalePending(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	users := memory.NewUserRepository()
	pending := servermocks.NewPendingStore(t)
	log := testutil.MakeNoopLogger()
	otp := NewOTP(servermocks.NewMailer(t), log, nil)
	otp.now = clock.Now
	reg := NewRegistration(users, pending, servermocks.NewStorage(t), password.NewBcrypt(bcrypt.MinCost), otp,
		regno.NewCodecWithClock(clock.Now), time.Hour, log, nil)

	_, err := users.Create(ctx, model.User{RegistrationNumber: "2023BSE007"})
	require.NoError(t, err)

	stale := model.PendingRegistration{
		RegistrationNumber: "FA23-BSE-007",
		Email:              testEmail,
		Verification: model.OTPVerification{Challenge: &model.OTPChallenge{
			Code:      "123456",
			ExpiresAt: clock.Now().Add(5 * time.Minute),
		}},
		ExpiresAt: clock.Now().Add(time.Hour),
	}
	pending.On("Get", mock.Anything, "FA23-BSE-007").Return(stale, nil).Once()
	pending.On("Delete", mock.Anything, "FA23-BSE-007").Return(nil).Once()

	_, err = reg.VerifyOTP(ctx, "FA23-BSE-007", "123456")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Equal(t, 1, users.Count())
}

func TestRegistration_Promote_PendingDeleteFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	users := memory.NewUserRepository()
	pending := servermocks.NewPendingStore(t)
	log := testutil.MakeNoopLogger()
	otp := NewOTP(servermocks.NewMailer(t), log, nil)
	otp.now = clock.Now
	reg := NewRegistration(users, pending, servermocks.NewStorage(t), password.NewBcrypt(bcrypt.MinCost), otp,
		regno.NewCodecWithClock(clock.Now), time.Hour, log, nil)

	p := model.PendingRegistration{
		RegistrationNumber: "FA23-BSE-007",
		Email:              testEmail,
		Verification: model.OTPVerification{Challenge: &model.OTPChallenge{
			Code:      "123456",
			ExpiresAt: clock.Now().Add(5 * time.Minute),
		}},
	}
	pending.On("Get", mock.Anything, "FA23-BSE-007").Return(p, nil).Once()
	pending.On("Delete", mock.Anything, "FA23-BSE-007").Return(errors.New("db down")).Once()

	user, err := reg.VerifyOTP(ctx, "FA23-BSE-007", "123456")
	require.NoError(t, err)
	assert.Equal(t, "2023BSE007", user.RegistrationNumber)
}

func pngUpload() model.Upload {
	return model.Upload{
		Filename:    "card.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      bytes.NewReader([]byte("\x89PNG")),
	}
}

func TestRegistration_UploadIDAndApprove(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)

	_, err := f.reg.SignupInit(ctx, signupInput(model.MethodUniversityID))
	require.NoError(t, err)

	var fileRef string
	f.storage.On("Upload", mock.Anything, idCardKeyMatcher("2023BSE007", ".png"), mock.Anything, int64(4), "image/png").
		Run(func(args mock.Arguments) { fileRef = args.String(1) }).
		Return(nil).Once()
	f.storage.On("URL", mock.Anything).
		Return(func(key string) string { return "http://files/" + key }).Once()

	res, err := f.reg.UploadID(ctx, "fa23-bse-007", pngUpload())
	require.NoError(t, err)
	assert.Equal(t, "http://files/"+fileRef, res.FileURL)
	assert.Equal(t, "2023BSE007", res.User.RegistrationNumber)
	assert.Equal(t, model.MethodUniversityID, res.User.VerificationMethod)
	assert.True(t, res.User.IsVerified)
	require.NotNil(t, res.User.IDCard)
	assert.Equal(t, fileRef, res.User.IDCard.FileRef)
	assert.False(t, res.User.IDCard.Verified)

	_, err = f.pending.Get(ctx, "FA23-BSE-007")
	assert.ErrorIs(t, err, model.ErrNotFound)

	f.storage.On("Exists", mock.Anything, fileRef).Return(true, nil).Once()
	approved, err := f.reg.ApproveID(ctx, "FA23-BSE-007")
	require.NoError(t, err)
	require.NotNil(t, approved.IDCard)
	assert.True(t, approved.IDCard.Verified)

	stored, err := f.users.GetByRegistrationNumber(ctx, "2023BSE007")
	require.NoError(t, err)
	assert.True(t, stored.IDCard.Verified)

	_, err = f.reg.ApproveID(ctx, "FA23-BSE-007")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAlreadyVerified)
	apiErr, _ := apierror.As(err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestRegistration_UploadID_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("otp signup", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodOTP))
		require.NoError(t, err)

		_, err = f.reg.UploadID(ctx, "FA23-BSE-007", pngUpload())
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrWrongVerificationMethod)
		assert.Equal(t, 0, f.users.Count())
	})

	t.Run("no pending", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.UploadID(ctx, "FA23-BSE-007", pngUpload())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("no file", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.UploadID(ctx, "FA23-BSE-007", model.Upload{})
		require.Error(t, err)
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Contains(t, apiErr.Fields, "universityIdCard")
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newRegFixture(t)
		up := pngUpload()
		up.ContentType = "text/plain"
		_, err := f.reg.UploadID(ctx, "FA23-BSE-007", up)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})

	t.Run("storage failure keeps pending", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodUniversityID))
		require.NoError(t, err)
		f.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, int64(4), "image/png").
			Return(errors.New("minio down")).Once()

		_, err = f.reg.UploadID(ctx, "FA23-BSE-007", pngUpload())
		assert.True(t, apierror.IsKind(err, apierror.KindInternal))
		_, err = f.pending.Get(ctx, "FA23-BSE-007")
		assert.NoError(t, err)
	})

	t.Run("promotion conflict removes blob", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.SignupInit(ctx, signupInput(model.MethodUniversityID))
		require.NoError(t, err)
		_, err = f.users.Create(ctx, model.User{RegistrationNumber: "2023BSE007"})
		require.NoError(t, err)

		var fileRef string
		f.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, int64(4), "image/png").
			Run(func(args mock.Arguments) { fileRef = args.String(1) }).
			Return(nil).Once()
		f.storage.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool { return key == fileRef })).
			Return(nil).Once()

		_, err = f.reg.UploadID(ctx, "FA23-BSE-007", pngUpload())
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindConflict))
		_, err = f.pending.Get(ctx, "FA23-BSE-007")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestRegistration_ApproveID_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.ApproveID(ctx, "FA23-BSE-007")
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})

	t.Run("unparseable", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.reg.ApproveID(ctx, "garbage")
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})

	t.Run("no id card", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.users.Create(ctx, model.User{RegistrationNumber: "2023BSE007", VerificationMethod: model.MethodOTP})
		require.NoError(t, err)

		_, err = f.reg.ApproveID(ctx, "FA23-BSE-007")
		assert.ErrorIs(t, err, model.ErrNoIDCard)
	})

	t.Run("blob missing", func(t *testing.T) {
		f := newRegFixture(t)
		_, err := f.users.Create(ctx, model.User{
			RegistrationNumber: "2023BSE007",
			IDCard:             &model.IDCard{FileRef: "id-cards/gone.png"},
		})
		require.NoError(t, err)
		f.storage.On("Exists", mock.Anything, "id-cards/gone.png").Return(false, nil).Once()

		_, err = f.reg.ApproveID(ctx, "FA23-BSE-007")
		assert.ErrorIs(t, err, model.ErrIDCardMissing)
	})
}

func TestRegistration_IDCard(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t)

	_, err := f.users.Create(ctx, model.User{
		RegistrationNumber: "2023BSE007",
		IDCard:             &model.IDCard{FileRef: "id-cards/2023BSE007-x.png"},
	})
	require.NoError(t, err)
	f.storage.On("Download", mock.Anything, "id-cards/2023BSE007-x.png").
		Return(io.NopCloser(bytes.NewReader([]byte("png"))), nil).Once()

	file, err := f.reg.IDCard(ctx, "fa23-bse-007")
	require.NoError(t, err)
	defer file.Body.Close()
	assert.Equal(t, "id-cards/2023BSE007-x.png", file.Key)
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), body)

	_, err = f.users.Create(ctx, model.User{RegistrationNumber: "2024BCS001"})
	require.NoError(t, err)
	_, err = f.reg.IDCard(ctx, "FA24-BCS-001")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
