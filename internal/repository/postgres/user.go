package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cuisports/sportsreg/internal/model"
)

const uniqueViolation = "23505"

const userColumns = `id, registration_number, email, name, gender, department, program, password_hash,
	verification_method, id_card_file_ref, id_card_verified, is_verified, created_at, updated_at`

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db  *Connection
	now func() time.Time
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *UserRepository) GetByRegistrationNumber(ctx context.Context, registrationNumber string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE registration_number = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, registrationNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by registration number: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Create inserts user. The registration number unique constraint decides
// concurrent promotions of the same student; the loser gets ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	fileRef, cardVerified := idCardColumns(user.IDCard)

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.RegistrationNumber, user.Email, user.Name, user.Gender, user.Department, user.Program,
		user.PasswordHash, string(user.VerificationMethod), fileRef, cardVerified, user.IsVerified,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", user.RegistrationNumber, model.ErrConflict)
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	fileRef, cardVerified := idCardColumns(user.IDCard)

	query := `UPDATE users SET registration_number = $2, email = $3, name = $4, gender = $5, department = $6,
			  program = $7, password_hash = $8, verification_method = $9, id_card_file_ref = $10,
			  id_card_verified = $11, is_verified = $12, updated_at = $13
			  WHERE id = $1
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.RegistrationNumber, user.Email, user.Name, user.Gender, user.Department, user.Program,
		user.PasswordHash, string(user.VerificationMethod), fileRef, cardVerified, user.IsVerified,
		r.now().UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", user.RegistrationNumber, model.ErrConflict)
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return saved, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user         model.User
		method       string
		fileRef      *string
		cardVerified bool
	)

	err := row.Scan(
		&user.ID, &user.RegistrationNumber, &user.Email, &user.Name, &user.Gender, &user.Department,
		&user.Program, &user.PasswordHash, &method, &fileRef, &cardVerified, &user.IsVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	user.VerificationMethod = model.VerificationMethod(method)
	if fileRef != nil {
		user.IDCard = &model.IDCard{FileRef: *fileRef, Verified: cardVerified}
	}

	return user, nil
}

func idCardColumns(card *model.IDCard) (*string, bool) {
	if card == nil {
		return nil, false
	}
	ref := card.FileRef
	return &ref, card.Verified
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
