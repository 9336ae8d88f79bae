package domain

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var dateKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CalendarDate is a timezone-naive year-month-day value.
// The zero value means "no date" and is never a valid ledger key.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date t falls on in its own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseDate accepts only canonical YYYY-MM-DD keys naming a real day.
func ParseDate(s string) (CalendarDate, error) {
	if !dateKeyRegex.MatchString(s) {
		return CalendarDate{}, &InvalidDateError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return CalendarDate{}, &InvalidDateError{Input: s, Reason: "not a calendar day"}
	}
	return DateOf(t), nil
}

func MustParseDate(s string) CalendarDate {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// dayNumber counts days since 1970-01-01. UTC midnights are exactly 86400s apart,
// so the division is exact regardless of where the caller lives.
func (d CalendarDate) dayNumber() int64 {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.Year, d.Month, d.Day+n)
}

// DaysSince returns d - other in whole calendar days.
func (d CalendarDate) DaysSince(other CalendarDate) int {
	return int(d.dayNumber() - other.dayNumber())
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.dayNumber() < other.dayNumber() }
func (d CalendarDate) After(other CalendarDate) bool  { return d.dayNumber() > other.dayNumber() }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.dayNumber() == other.dayNumber() }

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d CalendarDate) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *CalendarDate) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d CalendarDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *CalendarDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		// DATE columns come back as UTC midnight.
		*d = DateOf(v.UTC())
		return nil
	default:
		return fmt.Errorf("calendar date: cannot scan %T", src)
	}
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) CalendarDate {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}
