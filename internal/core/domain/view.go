package domain

import "fmt"

type ViewMode string

const (
	ViewLive       ViewMode = "live"
	ViewHistorical ViewMode = "historical"
)

// ViewState is either Live or Historical(Date). It only exists in memory.
type ViewState struct {
	Mode ViewMode     `json:"mode"`
	Date CalendarDate `json:"date,omitempty"`
}

func LiveView() ViewState { return ViewState{Mode: ViewLive} }

func HistoricalView(d CalendarDate) ViewState {
	return ViewState{Mode: ViewHistorical, Date: d}
}

func (v ViewState) IsLive() bool { return v.Mode != ViewHistorical }

// Overlay holds the baseline record for one date plus uncommitted drafts.
// Drafts never carry over to another date.
type Overlay struct {
	Date     CalendarDate  `json:"date"`
	Baseline DailyRecord   `json:"baseline"`
	Drafts   []FieldUpdate `json:"drafts,omitempty"`
}

func NewOverlay(baseline DailyRecord) *Overlay {
	return &Overlay{Date: baseline.Date, Baseline: baseline.Clone()}
}

// For reports whether the overlay belongs to date d.
func (o *Overlay) For(d CalendarDate) bool { return o.Date.Equal(d) }

// Stage replaces any earlier draft for the same key.
func (o *Overlay) Stage(u FieldUpdate) {
	for i := range o.Drafts {
		if o.Drafts[i].Key == u.Key {
			o.Drafts[i] = u
			return
		}
	}
	o.Drafts = append(o.Drafts, u)
}

func (o *Overlay) Discard(key string) {
	out := o.Drafts[:0]
	for _, d := range o.Drafts {
		if d.Key != key {
			out = append(out, d)
		}
	}
	o.Drafts = out
}

func (o *Overlay) Clone() *Overlay {
	return &Overlay{
		Date:     o.Date,
		Baseline: o.Baseline.Clone(),
		Drafts:   append([]FieldUpdate(nil), o.Drafts...),
	}
}

// Over layers drafts on top of rec: overlay > ledger record > defaults. rec
// must be the record for the overlay's date.
func (o *Overlay) Over(rec DailyRecord) (DailyRecord, error) {
	if !o.For(rec.Date) {
		return rec, fmt.Errorf("overlay for %s cannot be applied to %s", o.Date, rec.Date)
	}
	out := rec.Clone()
	for _, d := range o.Drafts {
		if err := out.Apply(d); err != nil {
			return rec, fmt.Errorf("overlay draft %s: %w", d.Key, err)
		}
	}
	return out, nil
}

type EffectiveRecord struct {
	Record           DailyRecord `json:"record"`
	View             ViewState   `json:"view"`
	DayIndex         int         `json:"day_index"`
	BeforeRamadan    bool        `json:"before_ramadan"`
	RegionUnresolved bool        `json:"region_unresolved"`
	PendingSync      bool        `json:"pending_sync"`
}
