package workers

import (
	"context"
	"log"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

type Clock interface {
	Today() domain.CalendarDate
}

type JobObserver interface {
	ObserveStreakJob(outcome string)
}

type StreakJob struct {
	UserID string
}

// StreakWorker recomputes and persists a user's streak state after each
// confirmed write, reading the authoritative store rather than a session copy.
type StreakWorker struct {
	repo     domain.TrackerRepository
	catalog  *domain.RegionCatalog
	clock    Clock
	observer JobObserver
	jobs     chan StreakJob
}

func NewStreakWorker(repo domain.TrackerRepository, catalog *domain.RegionCatalog, clock Clock, observer JobObserver) *StreakWorker {
	return &StreakWorker{
		repo:     repo,
		catalog:  catalog,
		clock:    clock,
		observer: observer,
		jobs:     make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(userID string) {
	select {
	case w.jobs <- StreakJob{UserID: userID}:
	default:
		log.Printf("[WORKER] Streak queue full! Dropping job for user %s", userID)
		w.observe("dropped")
	}
}

func (w *StreakWorker) observe(outcome string) {
	if w.observer != nil {
		w.observer.ObserveStreakJob(outcome)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	rec, err := w.repo.Load(ctx, job.UserID)
	if err != nil {
		log.Printf("[WORKER] Error loading user %s: %v", job.UserID, err)
		w.observe("failed")
		return
	}

	window, _ := w.catalog.Resolve(rec.Region)
	fresh := domain.ComputeAllStreaks(rec.Ledger, window, w.clock.Today(), rec.Streaks)

	changed := changedStreaks(rec.Streaks, fresh)
	if len(changed) == 0 {
		w.observe("unchanged")
		return
	}

	if err := w.repo.Save(ctx, job.UserID, domain.UserPatch{Streaks: changed}); err != nil {
		log.Printf("[WORKER] Failed to save streaks for %s: %v", job.UserID, err)
		w.observe("failed")
		return
	}
	for a, s := range changed {
		log.Printf("[WORKER] Streak updated for %s/%s: Current=%d, Best=%d", job.UserID, a, s.Current, s.Best)
	}
	w.observe("updated")
}

func changedStreaks(old, fresh map[domain.ActivityType]domain.StreakState) map[domain.ActivityType]domain.StreakState {
	out := make(map[domain.ActivityType]domain.StreakState)
	for a, s := range fresh {
		prev, ok := old[a]
		if ok && prev.Current == s.Current && prev.Best == s.Best && sameDate(prev.LastDate, s.LastDate) {
			continue
		}
		out[a] = s
	}
	return out
}

func sameDate(a, b *domain.CalendarDate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
