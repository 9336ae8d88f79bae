package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// DailyRecord is everything recorded for one calendar date.
type DailyRecord struct {
	Date           CalendarDate    `json:"date"`
	Day            int             `json:"day"`
	Fasting        bool            `json:"fasting"`
	TaraweehPrayed bool            `json:"taraweeh_prayed"`
	Prayers        map[string]bool `json:"prayers"`
	JuzRead        []int           `json:"juz_read"`
	Notes          string          `json:"notes,omitempty"`
}

func NewDailyRecord(date CalendarDate) DailyRecord {
	prayers := make(map[string]bool, len(Prayers))
	for _, p := range Prayers {
		prayers[p] = false
	}
	return DailyRecord{Date: date, Prayers: prayers, JuzRead: []int{}}
}

func (r DailyRecord) Clone() DailyRecord {
	out := r
	out.Prayers = make(map[string]bool, len(r.Prayers))
	for k, v := range r.Prayers {
		out.Prayers[k] = v
	}
	out.JuzRead = slices.Clone(r.JuzRead)
	if out.JuzRead == nil {
		out.JuzRead = []int{}
	}
	return out
}

func (r DailyRecord) PrayersCompleted() int {
	n := 0
	for _, p := range Prayers {
		if r.Prayers[p] {
			n++
		}
	}
	return n
}

// FieldUpdate is a single field-level write: the unit of merge and of persistence.
type FieldUpdate struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// NewFieldUpdate validates value against the key's type and normalizes it.
func NewFieldUpdate(key FieldKey, value any) (FieldUpdate, error) {
	if key.Target != TargetLedger {
		return FieldUpdate{}, fmt.Errorf("%w: %s is not a ledger field", ErrUnknownField, key.Raw)
	}
	var (
		v   any
		err error
	)
	if key.Raw == KeyNotes {
		v, err = asString(value)
	} else {
		v, err = asBool(value)
	}
	if err != nil {
		return FieldUpdate{}, fmt.Errorf("%w: %s: %v", ErrInvalidFieldValue, key.Raw, err)
	}
	return FieldUpdate{Key: key.Raw, Value: v}, nil
}

// DayUpdate stamps the 1-based window day onto a record.
func DayUpdate(day int) FieldUpdate {
	return FieldUpdate{Key: KeyDay, Value: day}
}

// Apply merges one field into the record, leaving every other field untouched.
func (r *DailyRecord) Apply(u FieldUpdate) error {
	if r.Prayers == nil {
		r.Prayers = NewDailyRecord(r.Date).Prayers
	}
	if r.JuzRead == nil {
		r.JuzRead = []int{}
	}

	if u.Key == KeyDay {
		n, err := asInt(u.Value)
		if err != nil {
			return fmt.Errorf("%w: day: %v", ErrInvalidFieldValue, err)
		}
		r.Day = n
		return nil
	}

	key, err := ParseFieldKey(u.Key)
	if err != nil {
		return err
	}
	norm, err := NewFieldUpdate(key, u.Value)
	if err != nil {
		return err
	}

	switch {
	case key.Raw == KeyFasting:
		r.Fasting = norm.Value.(bool)
	case key.Raw == KeyTaraweeh:
		r.TaraweehPrayed = norm.Value.(bool)
	case key.Raw == KeyNotes:
		r.Notes = norm.Value.(string)
	case key.Prayer != "":
		r.Prayers[key.Prayer] = norm.Value.(bool)
	case key.Juz > 0:
		r.setJuz(key.Juz, norm.Value.(bool))
	}
	return nil
}

func (r *DailyRecord) setJuz(juz int, read bool) {
	idx, found := slices.BinarySearch(r.JuzRead, juz)
	switch {
	case read && !found:
		r.JuzRead = slices.Insert(r.JuzRead, idx, juz)
	case !read && found:
		r.JuzRead = slices.Delete(r.JuzRead, idx, idx+1)
	}
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// asInt accepts float64 because that is what encoding/json decodes numbers to.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}
