package repository

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

var _ domain.TrackerRepository = (*InMemoryTrackerRepository)(nil)

type InMemoryTrackerRepository struct {
	store map[string]*domain.UserRecord

	mu sync.RWMutex
}

func NewInMemoryTrackerRepository() *InMemoryTrackerRepository {
	return &InMemoryTrackerRepository{
		store: make(map[string]*domain.UserRecord),
	}
}

func (r *InMemoryTrackerRepository) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store[userID]
	if !ok {
		return domain.NewUserRecord(userID), nil
	}
	return rec.Clone(), nil
}

func (r *InMemoryTrackerRepository) Save(ctx context.Context, userID string, patch domain.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.store[userID]
	if !ok {
		rec = domain.NewUserRecord(userID)
	}

	// Apply on a copy so a bad field leaves the stored record as it was.
	next := rec.Clone()
	if err := next.Apply(patch); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	r.store[userID] = next
	return nil
}
