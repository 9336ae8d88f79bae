package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

type Clock interface {
	Today() domain.CalendarDate
}

// LocalClock derives canonical-today from wall time in a fixed location.
type LocalClock struct {
	Location *time.Location
	Now      func() time.Time
}

func (c LocalClock) Today() domain.CalendarDate {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return domain.Today(now(), c.Location)
}

// StreakNotifier is told about every confirmed write.
type StreakNotifier interface {
	Enqueue(userID string)
}

// DefaultStoreTimeout bounds each store call a session makes while holding its lock.
const DefaultStoreTimeout = 2 * time.Second

type ReconcilerDeps struct {
	Repo         domain.TrackerRepository
	Catalog      *domain.RegionCatalog
	Clock        Clock
	Notifier     StreakNotifier
	StoreTimeout time.Duration
}

// Reconciler is the per-session view state machine. It starts Live, moves to
// Historical(date) on ViewDate and back on ReturnToLive or a day rollover, and
// routes writes to the date currently in view.
type Reconciler struct {
	mu   sync.Mutex
	deps ReconcilerDeps

	userID   string
	snapshot *domain.UserRecord
	view     domain.ViewState
	overlay  *domain.Overlay
	day      domain.CalendarDate

	pending     domain.UserPatch
	pendingSync bool
	lastUsed    time.Time
}

type TrackerState struct {
	Today            domain.CalendarDate                        `json:"today"`
	DayIndex         int                                        `json:"day_index"`
	Window           domain.CalendarWindow                      `json:"calendar_window"`
	WindowEnd        domain.CalendarDate                        `json:"window_end"`
	Region           *domain.RegionProfile                      `json:"region,omitempty"`
	RegionUnresolved bool                                       `json:"region_unresolved"`
	BeforeRamadan    bool                                       `json:"before_ramadan"`
	Effective        domain.EffectiveRecord                     `json:"effective_record"`
	Overlay          *domain.Overlay                            `json:"overlay,omitempty"`
	Streaks          map[domain.ActivityType]domain.StreakState `json:"streaks"`
	PendingSync      bool                                       `json:"pending_sync"`
}

func NewReconciler(ctx context.Context, deps ReconcilerDeps, userID string) (*Reconciler, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	r := &Reconciler{deps: deps, userID: userID, view: domain.LiveView()}

	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	rec, err := deps.Repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reconciler: load %s: %w", userID, err)
	}
	r.snapshot = rec.Clone()
	r.day = rec.LastActiveDate
	r.lastUsed = time.Now()
	return r, nil
}

// storeContext detaches ctx from the caller's cancellation, so a torn-down
// request still lets a write land, and bounds it by the store timeout so a
// slow store cannot hold the session lock indefinitely.
func (r *Reconciler) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := r.deps.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (r *Reconciler) window() (domain.CalendarWindow, bool) {
	return r.deps.Catalog.Resolve(r.snapshot.Region)
}

func (r *Reconciler) targetDate() domain.CalendarDate {
	if r.view.IsLive() {
		return r.deps.Clock.Today()
	}
	return r.view.Date
}

func (r *Reconciler) touch() { r.lastUsed = time.Now() }

// currentOverlay returns the overlay for the date in view. An overlay left over
// from another date is dropped.
func (r *Reconciler) currentOverlay() *domain.Overlay {
	if r.overlay != nil && !r.overlay.For(r.targetDate()) {
		r.overlay = nil
	}
	return r.overlay
}

func (r *Reconciler) View() domain.ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// ViewDate switches to Historical(d) from any state and loads the ledger
// record for d as the overlay baseline.
func (r *Reconciler) ViewDate(d domain.CalendarDate) error {
	if d.IsZero() {
		return &domain.InvalidDateError{Reason: "empty date"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	r.view = domain.HistoricalView(d)
	r.overlay = domain.NewOverlay(r.snapshot.Ledger.Get(d))
	return nil
}

func (r *Reconciler) ReturnToLive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	r.returnToLive()
}

func (r *Reconciler) returnToLive() {
	r.view = domain.LiveView()
	r.overlay = nil
}

// StageDraft records an uncommitted value for the date in view.
func (r *Reconciler) StageDraft(key string, value any) (domain.EffectiveRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	fk, err := domain.ParseFieldKey(key)
	if err != nil {
		return domain.EffectiveRecord{}, err
	}
	target := r.targetDate()
	window, _ := r.window()
	if err := domain.Authorize(fk.Kind, target, window); err != nil {
		return domain.EffectiveRecord{}, err
	}
	upd, err := domain.NewFieldUpdate(fk, value)
	if err != nil {
		return domain.EffectiveRecord{}, err
	}
	if r.currentOverlay() == nil {
		r.overlay = domain.NewOverlay(r.snapshot.Ledger.Get(target))
	}
	r.overlay.Stage(upd)
	return r.effectiveRecord(), nil
}

// RecordActivity writes to today in Live and to the viewed date in Historical.
func (r *Reconciler) RecordActivity(ctx context.Context, key string, value any) (domain.EffectiveRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(ctx, r.targetDate(), key, value)
}

// RecordActivityOn writes to an explicit date without changing the view.
func (r *Reconciler) RecordActivityOn(ctx context.Context, date domain.CalendarDate, key string, value any) (domain.EffectiveRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(ctx, date, key, value)
}

func (r *Reconciler) record(ctx context.Context, target domain.CalendarDate, key string, value any) (domain.EffectiveRecord, error) {
	r.touch()

	fk, err := domain.ParseFieldKey(key)
	if err != nil {
		return domain.EffectiveRecord{}, err
	}
	r.sync(ctx)
	window, _ := r.window()
	if err := domain.Authorize(fk.Kind, target, window); err != nil {
		return domain.EffectiveRecord{}, err
	}

	var patch domain.UserPatch
	if fk.Target == domain.TargetProfile {
		patch.Metadata = map[string]any{fk.Raw: value}
	} else {
		upd, err := domain.NewFieldUpdate(fk, value)
		if err != nil {
			return domain.EffectiveRecord{}, err
		}
		patch.Ledger = []domain.LedgerWrite{
			{Date: target, Update: upd},
			{Date: target, Update: domain.DayUpdate(window.DayIndex(target))},
		}
	}

	if err := r.snapshot.Apply(patch); err != nil {
		return domain.EffectiveRecord{}, err
	}

	if touched := streakActivities(fk.Activities()); len(touched) > 0 {
		today := r.deps.Clock.Today()
		patch.Streaks = make(map[domain.ActivityType]domain.StreakState, len(touched))
		for _, a := range touched {
			s := domain.ComputeStreak(r.snapshot.Ledger, a, window, today, r.snapshot.Streaks[a].Best)
			r.snapshot.Streaks[a] = s
			patch.Streaks[a] = s
		}
	}

	if o := r.currentOverlay(); o != nil && o.For(target) {
		o.Discard(fk.Raw)
		r.overlay.Baseline = r.snapshot.Ledger.Get(target)
	}

	r.save(ctx, patch)
	return r.effectiveRecord(), nil
}

func streakActivities(touched []domain.ActivityType) []domain.ActivityType {
	var out []domain.ActivityType
	for _, t := range touched {
		for _, a := range domain.StreakActivities {
			if t == a {
				out = append(out, a)
			}
		}
	}
	return out
}

// save persists patch on a store context. Failures keep the patch queued and
// flip the sync flag; the in-memory snapshot stays authoritative for the session.
func (r *Reconciler) save(ctx context.Context, patch domain.UserPatch) {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()

	toSave := patch
	if r.pendingSync {
		toSave = r.pending
		toSave.Combine(patch)
	}

	if err := r.deps.Repo.Save(ctx, r.userID, toSave); err != nil {
		log.Printf("[STORE] Save for user %s failed, keeping write pending: %v", r.userID, err)
		r.pending = toSave
		r.pendingSync = true
		return
	}

	r.pending = domain.UserPatch{}
	r.pendingSync = false
	if r.deps.Notifier != nil {
		r.deps.Notifier.Enqueue(r.userID)
	}
}

// Flush retries pending writes. It returns ErrStoreUnavailable if they still fail.
func (r *Reconciler) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if !r.pendingSync {
		return nil
	}
	ctx, cancel := r.storeContext(ctx)
	defer cancel()
	if err := r.deps.Repo.Save(ctx, r.userID, r.pending); err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	r.pending = domain.UserPatch{}
	r.pendingSync = false
	if r.deps.Notifier != nil {
		r.deps.Notifier.Enqueue(r.userID)
	}
	return nil
}

// SelectRegion changes the region profile. A stored profile can only be
// replaced while today is still before the new profile's start date. Ledger
// entries are never touched.
func (r *Reconciler) SelectRegion(ctx context.Context, regionID string) (TrackerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	profile, err := r.deps.Catalog.Profile(regionID)
	if err != nil {
		return TrackerState{}, err
	}
	r.sync(ctx)
	today := r.deps.Clock.Today()

	if cur := r.snapshot.Region; cur != nil {
		if *cur == profile {
			return r.state(), nil
		}
		if !today.Before(profile.StartDate) {
			return TrackerState{}, fmt.Errorf("%w: %s starts on %s", domain.ErrRegionLocked, profile.RegionID, profile.StartDate)
		}
	}

	window := domain.ResolveWindow(profile)
	if err := domain.Authorize(domain.WriteMetadata, today, window); err != nil {
		return TrackerState{}, err
	}

	r.snapshot.Region = &profile
	streaks := domain.ComputeAllStreaks(r.snapshot.Ledger, window, today, nil)
	r.snapshot.Streaks = streaks

	r.save(ctx, domain.UserPatch{Region: &profile, Streaks: streaks})
	return r.state(), nil
}

// CheckDayRollover compares canonical-today with the day this session last
// saw and with the stored last active date. When the session's day changed it
// returns to Live and drops the per-day drafts; past ledger entries are left
// alone. The stored date is advanced only if no other session did it first.
func (r *Reconciler) CheckDayRollover(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	r.sync(ctx)
	today := r.deps.Clock.Today()
	sessionRolled := !r.day.Equal(today)
	storeRolled := !r.snapshot.LastActiveDate.Equal(today)
	if !sessionRolled && !storeRolled {
		return false, nil
	}

	r.day = today
	if sessionRolled {
		r.returnToLive()
	}
	if !storeRolled {
		return true, nil
	}
	r.snapshot.LastActiveDate = today

	window, _ := r.window()
	streaks := domain.ComputeAllStreaks(r.snapshot.Ledger, window, today, r.snapshot.Streaks)
	r.snapshot.Streaks = streaks

	r.save(ctx, domain.UserPatch{LastActiveDate: &today, Streaks: streaks})
	return true, nil
}

// Refresh reloads the snapshot from the store and replays unsynced writes on top.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	return r.reload(ctx)
}

// sync is reload for the write paths: other sessions of the same user may have
// written since the snapshot was taken. On failure the session carries on with
// what it has.
func (r *Reconciler) sync(ctx context.Context) {
	if err := r.reload(ctx); err != nil {
		log.Printf("[SESSION] Reload for user %s failed, using cached snapshot: %v", r.userID, err)
	}
}

func (r *Reconciler) reload(ctx context.Context) error {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()

	rec, err := r.deps.Repo.Load(ctx, r.userID)
	if err != nil {
		return err
	}
	rec = rec.Clone()
	if r.pendingSync {
		if err := rec.Apply(r.pending); err != nil {
			return err
		}
	}
	r.snapshot = rec
	if o := r.currentOverlay(); o != nil {
		o.Baseline = rec.Ledger.Get(o.Date)
	}
	return nil
}

func (r *Reconciler) effectiveRecord() domain.EffectiveRecord {
	date := r.targetDate()
	window, unresolved := r.window()

	rec := r.snapshot.Ledger.Get(date)
	if o := r.currentOverlay(); o != nil {
		over, err := o.Over(rec)
		if err != nil {
			log.Printf("[SESSION] Dropping drafts for user %s: %v", r.userID, err)
			r.overlay = nil
		} else {
			rec = over
		}
	}
	return domain.EffectiveRecord{
		Record:           rec,
		View:             r.view,
		DayIndex:         window.DayIndex(date),
		BeforeRamadan:    window.IsBefore(date),
		RegionUnresolved: unresolved,
		PendingSync:      r.pendingSync,
	}
}

func (r *Reconciler) EffectiveRecord() domain.EffectiveRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effectiveRecord()
}

func (r *Reconciler) Overlay() *domain.Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.currentOverlay()
	if o == nil {
		return nil
	}
	return o.Clone()
}

// Streaks are derived on read so they always reflect the current day.
func (r *Reconciler) Streaks() map[domain.ActivityType]domain.StreakState {
	r.mu.Lock()
	defer r.mu.Unlock()
	window, _ := r.window()
	return domain.ComputeAllStreaks(r.snapshot.Ledger, window, r.deps.Clock.Today(), r.snapshot.Streaks)
}

func (r *Reconciler) Window() (domain.CalendarWindow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window()
}

func (r *Reconciler) PendingSync() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingSync
}

// Snapshot returns a copy of the session's current user record.
func (r *Reconciler) Snapshot() *domain.UserRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot.Clone()
}

func (r *Reconciler) State() TrackerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state()
}

func (r *Reconciler) state() TrackerState {
	today := r.deps.Clock.Today()
	window, unresolved := r.window()

	effective := r.effectiveRecord()
	var overlay *domain.Overlay
	if o := r.currentOverlay(); o != nil {
		overlay = o.Clone()
	}
	return TrackerState{
		Today:            today,
		DayIndex:         window.DayIndex(today),
		Window:           window,
		WindowEnd:        window.End(),
		Region:           r.snapshot.Region,
		RegionUnresolved: unresolved,
		BeforeRamadan:    window.IsBefore(today),
		Effective:        effective,
		Overlay:          overlay,
		Streaks:          domain.ComputeAllStreaks(r.snapshot.Ledger, window, today, r.snapshot.Streaks),
		PendingSync:      r.pendingSync,
	}
}

func (r *Reconciler) idleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUsed
}
