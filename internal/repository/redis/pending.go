// Package redis stores pending registrations in Redis with per-key expiry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cuisports/sportsreg/internal/model"
)

var _ model.PendingStore = (*PendingRepository)(nil)

const keyPrefix = "pending_registration:"

// PendingRepository keeps each pending registration as a JSON string whose
// key expires with the record.
type PendingRepository struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewPendingRepository(client goredis.UniversalClient) *PendingRepository {
	return &PendingRepository{client: client, now: time.Now}
}

func (r *PendingRepository) Put(ctx context.Context, pending model.PendingRegistration) error {
	ttl := time.Duration(0)
	if !pending.ExpiresAt.IsZero() {
		ttl = pending.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx, pending.RegistrationNumber)
		}
	}

	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending registration: %w", err)
	}

	if err := r.client.Set(ctx, key(pending.RegistrationNumber), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending registration: %w", err)
	}

	return nil
}

func (r *PendingRepository) Get(ctx context.Context, registrationNumber string) (model.PendingRegistration, error) {
	payload, err := r.client.Get(ctx, key(registrationNumber)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return model.PendingRegistration{}, model.ErrNotFound
	}
	if err != nil {
		return model.PendingRegistration{}, fmt.Errorf("failed to get pending registration: %w", err)
	}

	var pending model.PendingRegistration
	if err := json.Unmarshal(payload, &pending); err != nil {
		return model.PendingRegistration{}, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}
	if pending.Expired(r.now()) {
		return model.PendingRegistration{}, model.ErrNotFound
	}

	return pending, nil
}

func (r *PendingRepository) Delete(ctx context.Context, registrationNumber string) error {
	if err := r.client.Del(ctx, key(registrationNumber)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}
	return nil
}

func key(registrationNumber string) string {
	return keyPrefix + registrationNumber
}
