// Package memory provides in-process stores for tests and single-node development.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cuisports/sportsreg/internal/model"
)

var (
	_ model.PendingStore  = (*PendingRepository)(nil)
	_ model.ExpiredPurger = (*PendingRepository)(nil)
)

type pendingEntry struct {
	payload   []byte
	expiresAt time.Time
}

// PendingRepository keeps pending registrations in a map. Records are
// stored serialized so callers never share state with the store.
type PendingRepository struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

func NewPendingRepository() *PendingRepository {
	return NewPendingRepositoryWithClock(time.Now)
}

func NewPendingRepositoryWithClock(now func() time.Time) *PendingRepository {
	return &PendingRepository{
		entries: make(map[string]pendingEntry),
		now:     now,
	}
}

func (r *PendingRepository) Put(_ context.Context, pending model.PendingRegistration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending registration: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[pending.RegistrationNumber] = pendingEntry{payload: payload, expiresAt: pending.ExpiresAt}

	return nil
}

func (r *PendingRepository) Get(_ context.Context, registrationNumber string) (model.PendingRegistration, error) {
	r.mu.Lock()
	entry, ok := r.entries[registrationNumber]
	if ok && r.expired(entry) {
		delete(r.entries, registrationNumber)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return model.PendingRegistration{}, model.ErrNotFound
	}

	var pending model.PendingRegistration
	if err := json.Unmarshal(entry.payload, &pending); err != nil {
		return model.PendingRegistration{}, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}

	return pending, nil
}

func (r *PendingRepository) Delete(_ context.Context, registrationNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, registrationNumber)
	return nil
}

// PurgeExpired removes every expired record and returns how many were removed.
func (r *PendingRepository) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for key, entry := range r.entries {
		if r.expired(entry) {
			delete(r.entries, key)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of stored records, expired ones included.
func (r *PendingRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *PendingRepository) expired(entry pendingEntry) bool {
	return !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt)
}
