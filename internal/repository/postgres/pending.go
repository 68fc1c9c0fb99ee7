package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cuisports/sportsreg/internal/model"
)

var (
	_ model.PendingStore  = (*PendingRepository)(nil)
	_ model.ExpiredPurger = (*PendingRepository)(nil)
)

// PendingRepository stores staged signups as JSONB rows keyed by registration number.
type PendingRepository struct {
	db  *Connection
	now func() time.Time
}

func NewPendingRepository(db *Connection) *PendingRepository {
	return &PendingRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *PendingRepository) Put(ctx context.Context, pending model.PendingRegistration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending registration: %w", err)
	}

	query := `INSERT INTO pending_registrations (registration_number, payload, expires_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $4)
			  ON CONFLICT (registration_number)
			  DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query, pending.RegistrationNumber, payload, pending.ExpiresAt, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store pending registration: %w", err)
	}

	return nil
}

func (r *PendingRepository) Get(ctx context.Context, registrationNumber string) (model.PendingRegistration, error) {
	query := `SELECT payload FROM pending_registrations
			  WHERE registration_number = $1 AND expires_at > $2`

	var payload []byte
	err := r.db.QueryRow(ctx, query, registrationNumber, r.now().UTC()).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PendingRegistration{}, model.ErrNotFound
		}
		return model.PendingRegistration{}, fmt.Errorf("failed to get pending registration: %w", err)
	}

	var pending model.PendingRegistration
	if err := json.Unmarshal(payload, &pending); err != nil {
		return model.PendingRegistration{}, fmt.Errorf("failed to decode pending registration: %w", err)
	}

	return pending, nil
}

func (r *PendingRepository) Delete(ctx context.Context, registrationNumber string) error {
	query := `DELETE FROM pending_registrations WHERE registration_number = $1`

	if _, err := r.db.Exec(ctx, query, registrationNumber); err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}

	return nil
}

// PurgeExpired removes rows past their expiry and returns how many were removed.
func (r *PendingRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM pending_registrations WHERE expires_at <= $1`

	tag, err := r.db.Exec(ctx, query, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired pending registrations: %w", err)
	}

	return tag.RowsAffected(), nil
}
