package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

type sessionKey struct {
	userID    string
	sessionID string
}

// TrackerService owns the live reconciler sessions. One user may hold several
// sessions (devices); each keeps its own view state and shares the store.
type TrackerService struct {
	deps ReconcilerDeps

	mu       sync.Mutex
	sessions map[sessionKey]*Reconciler
	idleTTL  time.Duration
}

func NewTrackerService(deps ReconcilerDeps, idleTTL time.Duration) *TrackerService {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &TrackerService{
		deps:     deps,
		sessions: make(map[sessionKey]*Reconciler),
		idleTTL:  idleTTL,
	}
}

func (s *TrackerService) Catalog() *domain.RegionCatalog { return s.deps.Catalog }

func (s *TrackerService) Today() domain.CalendarDate { return s.deps.Clock.Today() }

// Session returns the reconciler for (userID, sessionID), creating it when
// needed. An empty sessionID gets a fresh one, which is returned. A reused
// session is refreshed from the store first.
func (s *TrackerService) Session(ctx context.Context, userID, sessionID string) (*Reconciler, string, error) {
	if userID == "" {
		return nil, "", domain.ErrUnauthorized
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	key := sessionKey{userID: userID, sessionID: sessionID}

	s.mu.Lock()
	if r, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		if err := r.Refresh(ctx); err != nil {
			log.Printf("[SESSION] Refresh for %s/%s failed, using cached snapshot: %v", userID, sessionID, err)
		}
		return r, sessionID, nil
	}
	s.mu.Unlock()

	r, err := NewReconciler(ctx, s.deps, userID)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[key]; ok {
		return existing, sessionID, nil
	}
	s.sessions[key] = r
	return r, sessionID, nil
}

// Close flushes and forgets a session.
func (s *TrackerService) Close(ctx context.Context, userID, sessionID string) error {
	key := sessionKey{userID: userID, sessionID: sessionID}
	s.mu.Lock()
	r, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return r.Flush(ctx)
}

func (s *TrackerService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL. Sessions with unsynced
// writes are flushed first and kept if the flush fails.
func (s *TrackerService) Sweep(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	idle := make(map[sessionKey]*Reconciler)
	for k, r := range s.sessions {
		if now.Sub(r.idleSince()) > s.idleTTL {
			idle[k] = r
		}
	}
	s.mu.Unlock()

	removed := 0
	for k, r := range idle {
		if err := r.Flush(ctx); err != nil {
			log.Printf("[SESSION] Keeping idle session %s/%s, flush failed: %v", k.userID, k.sessionID, err)
			continue
		}
		s.mu.Lock()
		if s.sessions[k] == r {
			delete(s.sessions, k)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// FlushAll pushes every session's unsynced writes to the store and reports how
// many sessions still have writes pending afterwards.
func (s *TrackerService) FlushAll(ctx context.Context) int {
	s.mu.Lock()
	all := make(map[sessionKey]*Reconciler, len(s.sessions))
	for k, r := range s.sessions {
		all[k] = r
	}
	s.mu.Unlock()

	failed := 0
	for k, r := range all {
		if err := r.Flush(ctx); err != nil {
			log.Printf("[SESSION] Flush for %s/%s failed: %v", k.userID, k.sessionID, err)
			failed++
		}
	}
	return failed
}

// StartJanitor sweeps idle sessions until ctx is done.
func (s *TrackerService) StartJanitor(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if n := s.Sweep(ctx, now); n > 0 {
					log.Printf("[SESSION] Swept %d idle sessions", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
