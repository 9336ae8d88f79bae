package domain

import (
	"context"
	"maps"
	"time"
)

// UserRecord is the materialized state of one user as loaded from the store.
type UserRecord struct {
	UserID         string                       `json:"user_id"`
	Region         *RegionProfile               `json:"region,omitempty"`
	Ledger         *Ledger                      `json:"ledger"`
	Streaks        map[ActivityType]StreakState `json:"streaks"`
	LastActiveDate CalendarDate                 `json:"last_active_date"`
	Metadata       map[string]any               `json:"metadata"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

func NewUserRecord(userID string) *UserRecord {
	return &UserRecord{
		UserID:   userID,
		Ledger:   NewLedger(),
		Streaks:  make(map[ActivityType]StreakState),
		Metadata: make(map[string]any),
	}
}

func (u *UserRecord) Clone() *UserRecord {
	c := *u
	if u.Region != nil {
		r := *u.Region
		c.Region = &r
	}
	if u.Ledger != nil {
		c.Ledger = u.Ledger.Clone()
	} else {
		c.Ledger = NewLedger()
	}
	c.Streaks = maps.Clone(u.Streaks)
	if c.Streaks == nil {
		c.Streaks = make(map[ActivityType]StreakState)
	}
	c.Metadata = maps.Clone(u.Metadata)
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	return &c
}

type LedgerWrite struct {
	Date   CalendarDate `json:"date"`
	Update FieldUpdate  `json:"update"`
}

// UserPatch is a partial, field-path level update of a UserRecord
// (ledger.<date>.<field>, streaks.<type>, metadata.<key>, ...).
type UserPatch struct {
	Region         *RegionProfile               `json:"region,omitempty"`
	LastActiveDate *CalendarDate                `json:"last_active_date,omitempty"`
	Metadata       map[string]any               `json:"metadata,omitempty"`
	Ledger         []LedgerWrite                `json:"ledger,omitempty"`
	Streaks        map[ActivityType]StreakState `json:"streaks,omitempty"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Region == nil && p.LastActiveDate == nil && len(p.Metadata) == 0 &&
		len(p.Ledger) == 0 && len(p.Streaks) == 0
}

// Combine folds a later patch into p; later values win per field.
func (p *UserPatch) Combine(later UserPatch) {
	if later.Region != nil {
		p.Region = later.Region
	}
	if later.LastActiveDate != nil {
		p.LastActiveDate = later.LastActiveDate
	}
	if len(later.Metadata) > 0 {
		if p.Metadata == nil {
			p.Metadata = make(map[string]any)
		}
		maps.Copy(p.Metadata, later.Metadata)
	}
	p.Ledger = append(p.Ledger, later.Ledger...)
	if len(later.Streaks) > 0 {
		if p.Streaks == nil {
			p.Streaks = make(map[ActivityType]StreakState)
		}
		maps.Copy(p.Streaks, later.Streaks)
	}
}

// Apply merges the patch into the record. Untouched fields keep their values.
func (u *UserRecord) Apply(p UserPatch) error {
	if u.Ledger == nil {
		u.Ledger = NewLedger()
	}
	for _, w := range p.Ledger {
		if _, err := u.Ledger.Merge(w.Date, w.Update); err != nil {
			return err
		}
	}
	if p.Region != nil {
		r := *p.Region
		u.Region = &r
	}
	if p.LastActiveDate != nil {
		u.LastActiveDate = *p.LastActiveDate
	}
	if len(p.Metadata) > 0 {
		if u.Metadata == nil {
			u.Metadata = make(map[string]any)
		}
		maps.Copy(u.Metadata, p.Metadata)
	}
	if len(p.Streaks) > 0 {
		if u.Streaks == nil {
			u.Streaks = make(map[ActivityType]StreakState)
		}
		maps.Copy(u.Streaks, p.Streaks)
	}
	return nil
}

type TrackerRepository interface {
	// Load returns the stored record for userID, or an empty record when the
	// user has never written anything.
	Load(ctx context.Context, userID string) (*UserRecord, error)

	// Save merges patch into the stored record at field level. Implementations
	// must never replace a whole daily record or the whole user document.
	Save(ctx context.Context, userID string, patch UserPatch) error
}
