package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poketrainer/trainer-api/trainers"
)

var _ trainers.Repo = (*FakeTrainerRepo)(nil)

// FakeTrainerRepo is an in-memory trainers.Repo used in tests. All methods
// are safe for concurrent use; RotateRefreshToken performs the compare and
// the swap under one lock, matching the atomicity the real store provides.
type FakeTrainerRepo struct {
	trainersByID map[string]*trainers.Trainer
	emailIDs     map[string]string // email to trainer id
	lock         sync.RWMutex
	nowFunc      func() time.Time
}

func NewFakeTrainerRepo() *FakeTrainerRepo {
	return &FakeTrainerRepo{
		trainersByID: make(map[string]*trainers.Trainer),
		emailIDs:     make(map[string]string),
		nowFunc:      time.Now,
	}
}

func (r *FakeTrainerRepo) Create(_ context.Context, trainer *trainers.Trainer) (*trainers.Trainer, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.emailIDs[trainer.Email]; ok {
		return nil, trainers.ErrDuplicateEmail
	}

	stored := trainer.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := r.nowFunc()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.trainersByID[stored.ID] = stored
	r.emailIDs[stored.Email] = stored.ID
	return stored.Clone(), nil
}

func (r *FakeTrainerRepo) GetByEmail(_ context.Context, email string) (*trainers.Trainer, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIDs[email]
	if !ok {
		return nil, trainers.ErrNotFound
	}
	return r.trainersByID[id].Clone(), nil
}

func (r *FakeTrainerRepo) GetByID(_ context.Context, id string) (*trainers.Trainer, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	trainer, ok := r.trainersByID[id]
	if !ok {
		return nil, trainers.ErrNotFound
	}
	return trainer.Clone(), nil
}

func (r *FakeTrainerRepo) Update(_ context.Context, trainer *trainers.Trainer) (*trainers.Trainer, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.trainersByID[trainer.ID]
	if !ok {
		return nil, trainers.ErrNotFound
	}
	if otherID, ok := r.emailIDs[trainer.Email]; ok && otherID != trainer.ID {
		return nil, trainers.ErrDuplicateEmail
	}

	delete(r.emailIDs, stored.Email)
	stored.FirstName = trainer.FirstName
	stored.LastName = trainer.LastName
	stored.Email = trainer.Email
	stored.PasswordHash = trainer.PasswordHash
	stored.Team = append([]string(nil), trainer.Team...)
	stored.UpdatedAt = r.nowFunc()
	r.emailIDs[stored.Email] = stored.ID
	return stored.Clone(), nil
}

func (r *FakeTrainerRepo) SetRefreshToken(_ context.Context, id string, token *string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.trainersByID[id]
	if !ok {
		return trainers.ErrNotFound
	}
	if token == nil {
		stored.RefreshToken = nil
	} else {
		value := *token
		stored.RefreshToken = &value
	}
	stored.UpdatedAt = r.nowFunc()
	return nil
}

func (r *FakeTrainerRepo) RotateRefreshToken(_ context.Context, id, presented, next string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.trainersByID[id]
	if !ok {
		return trainers.ErrNotFound
	}
	if stored.RefreshToken == nil || *stored.RefreshToken != presented {
		return trainers.ErrRefreshTokenMismatch
	}
	stored.RefreshToken = &next
	stored.UpdatedAt = r.nowFunc()
	return nil
}

func (r *FakeTrainerRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.trainersByID[id]
	if !ok {
		return trainers.ErrNotFound
	}
	delete(r.emailIDs, stored.Email)
	delete(r.trainersByID, id)
	return nil
}

func (r *FakeTrainerRepo) List(_ context.Context) ([]*trainers.Trainer, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]*trainers.Trainer, 0, len(r.trainersByID))
	for _, trainer := range r.trainersByID {
		all = append(all, trainer.Clone())
	}
	return all, nil
}
