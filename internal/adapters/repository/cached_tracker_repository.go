package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

var _ domain.TrackerRepository = (*CachedTrackerRepository)(nil)

type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// errStaleFill aborts a cache fill when a Save landed while the record was
// being read from the store.
var errStaleFill = errors.New("record changed during load")

// CachedTrackerRepository keeps a JSON copy of each loaded user record in
// Redis. Every Save bumps a per-user version and drops the copy. A Load only
// fills the cache if the version it saw before reading the store is still
// current, so a slow reader never puts back a record older than the last
// Save. Redis failures fall through to next.
type CachedTrackerRepository struct {
	next     domain.TrackerRepository
	cache    *redis.Client
	ttl      time.Duration
	observer CacheObserver
}

func NewCachedTrackerRepository(next domain.TrackerRepository, cache *redis.Client, ttl time.Duration, observer CacheObserver) *CachedTrackerRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedTrackerRepository{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		observer: observer,
	}
}

func (r *CachedTrackerRepository) cacheKey(userID string) string {
	return fmt.Sprintf("tracker:%s", userID)
}

func (r *CachedTrackerRepository) versionKey(userID string) string {
	return fmt.Sprintf("tracker:%s:ver", userID)
}

// version returns the current write version, "" if none was recorded yet.
func (r *CachedTrackerRepository) version(ctx context.Context, userID string) (string, error) {
	v, err := r.cache.Get(ctx, r.versionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// invalidate bumps the version and drops the cached copy in one transaction.
// The version outlives the data key so an in-flight fill always sees the bump.
func (r *CachedTrackerRepository) invalidate(ctx context.Context, userID string) {
	verKey := r.versionKey(userID)
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, 2*r.ttl)
		pipe.Del(ctx, r.cacheKey(userID))
		return nil
	})
	if err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

// fill stores rec unless the version moved away from seen.
func (r *CachedTrackerRepository) fill(ctx context.Context, userID, seen string, rec *domain.UserRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	verKey := r.versionKey(userID)

	err = r.cache.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != seen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.cacheKey(userID), data, r.ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		log.Printf("[CACHE] Skipping fill for user %s: %v", userID, errStaleFill)
	default:
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}

func (r *CachedTrackerRepository) hit() {
	if r.observer != nil {
		r.observer.CacheHit()
	}
}

func (r *CachedTrackerRepository) miss() {
	if r.observer != nil {
		r.observer.CacheMiss()
	}
}

func (r *CachedTrackerRepository) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		rec := domain.NewUserRecord(userID)
		if err := json.Unmarshal([]byte(val), rec); err == nil {
			r.hit()
			return rec.Clone(), nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}
	r.miss()

	seen, verErr := r.version(ctx, userID)
	if verErr != nil {
		log.Printf("[CACHE] Redis read error: %v", verErr)
	}

	rec, err := r.next.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if verErr == nil {
		r.fill(ctx, userID, seen, rec)
	}
	return rec, nil
}

func (r *CachedTrackerRepository) Save(ctx context.Context, userID string, patch domain.UserPatch) error {
	if err := r.next.Save(ctx, userID, patch); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
