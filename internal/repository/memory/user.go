package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuisports/sportsreg/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps users in a map with a unique registration number index.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]model.User
	byRegNo map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]model.User),
		byRegNo: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) GetByRegistrationNumber(_ context.Context, registrationNumber string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRegNo[registrationNumber]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return copyUser(r.byID[id]), nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return copyUser(user), nil
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byRegNo[user.RegistrationNumber]; ok {
		return model.User{}, model.ErrConflict
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, ok := r.byID[user.ID]; ok {
		return model.User{}, model.ErrConflict
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.byID[user.ID] = copyUser(user)
	r.byRegNo[user.RegistrationNumber] = user.ID

	return copyUser(user), nil
}

func (r *UserRepository) Update(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	if existing.RegistrationNumber != user.RegistrationNumber {
		return model.User{}, model.ErrConflict
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.byID[user.ID] = copyUser(user)

	return copyUser(user), nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func copyUser(u model.User) model.User {
	if u.IDCard != nil {
		card := *u.IDCard
		u.IDCard = &card
	}
	return u
}
