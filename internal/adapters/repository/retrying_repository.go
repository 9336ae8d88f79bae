package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

var _ domain.TrackerRepository = (*RetryingTrackerRepository)(nil)

type RetryObserver interface {
	StoreRetry()
}

// RetryingTrackerRepository retries calls that failed with ErrStoreUnavailable,
// doubling the delay between attempts up to maxDelay. Other errors return at
// once.
type RetryingTrackerRepository struct {
	next      domain.TrackerRepository
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	observer  RetryObserver
}

func NewRetryingTrackerRepository(next domain.TrackerRepository, attempts int, baseDelay time.Duration, observer RetryObserver) *RetryingTrackerRepository {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &RetryingTrackerRepository{
		next:      next,
		attempts:  attempts,
		baseDelay: baseDelay,
		maxDelay:  5 * time.Second,
		observer:  observer,
	}
}

func (r *RetryingTrackerRepository) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	var rec *domain.UserRecord
	err := r.do(ctx, "load", userID, func() error {
		var err error
		rec, err = r.next.Load(ctx, userID)
		return err
	})
	return rec, err
}

func (r *RetryingTrackerRepository) Save(ctx context.Context, userID string, patch domain.UserPatch) error {
	return r.do(ctx, "save", userID, func() error {
		return r.next.Save(ctx, userID, patch)
	})
}

func (r *RetryingTrackerRepository) do(ctx context.Context, op, userID string, fn func() error) error {
	delay := r.baseDelay
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) || attempt == r.attempts {
			return err
		}

		log.Printf("[STORE] %s for user %s failed (attempt %d/%d), retrying in %s: %v",
			op, userID, attempt, r.attempts, delay, err)
		if r.observer != nil {
			r.observer.StoreRetry()
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}

		delay *= 2
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
	return err
}
