package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Ledger maps calendar dates to daily records for one user.
// Records are created lazily on first write and never removed.
type Ledger struct {
	records map[CalendarDate]DailyRecord
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[CalendarDate]DailyRecord)}
}

// Get never returns nil-ish data: absent dates yield a default record.
func (l *Ledger) Get(date CalendarDate) DailyRecord {
	if rec, ok := l.records[date]; ok {
		return rec.Clone()
	}
	return NewDailyRecord(date)
}

func (l *Ledger) Has(date CalendarDate) bool {
	_, ok := l.records[date]
	return ok
}

func (l *Ledger) Len() int { return len(l.records) }

// Merge applies updates field by field on top of the stored record. Either all
// updates apply or the ledger is left unchanged.
func (l *Ledger) Merge(date CalendarDate, updates ...FieldUpdate) (DailyRecord, error) {
	if date.IsZero() {
		return DailyRecord{}, &InvalidDateError{Input: "", Reason: "empty date"}
	}
	rec := l.Get(date)
	for _, u := range updates {
		if err := rec.Apply(u); err != nil {
			return DailyRecord{}, err
		}
	}
	l.records[date] = rec
	return rec.Clone(), nil
}

// Dates returns every recorded date, newest first.
func (l *Ledger) Dates() []CalendarDate {
	out := make([]CalendarDate, 0, len(l.records))
	for d := range l.records {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

func (l *Ledger) Clone() *Ledger {
	c := &Ledger{records: make(map[CalendarDate]DailyRecord, len(l.records))}
	for d, r := range l.records {
		c.records[d] = r.Clone()
	}
	return c
}

func (l *Ledger) IsActivityCompleted(date CalendarDate, activity ActivityType) bool {
	rec, ok := l.records[date]
	if !ok {
		return false
	}
	return IsActivityCompleted(rec, activity)
}

// IsActivityCompleted holds the only definition of what "done" means per activity.
// Quran counts only when a juz was marked read on that very date.
func IsActivityCompleted(rec DailyRecord, activity ActivityType) bool {
	switch activity {
	case ActivityFasting:
		return rec.Fasting
	case ActivityTaraweeh:
		return rec.TaraweehPrayed
	case ActivityQuran:
		return len(rec.JuzRead) > 0
	}
	if name, ok := strings.CutPrefix(string(activity), "prayer_"); ok {
		return rec.Prayers[name]
	}
	return false
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.records)
}

func (l *Ledger) UnmarshalJSON(b []byte) error {
	records := make(map[CalendarDate]DailyRecord)
	if err := json.Unmarshal(b, &records); err != nil {
		return err
	}
	for d, r := range records {
		r.Date = d
		records[d] = r.Clone()
	}
	l.records = records
	return nil
}
