package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate       = errors.New("invalid calendar date")
	ErrBeforeWindow      = errors.New("activity cannot be recorded before the observance starts")
	ErrStoreUnavailable  = errors.New("tracker store unavailable")
	ErrUnknownField      = errors.New("unknown activity field")
	ErrInvalidFieldValue = errors.New("invalid value for activity field")
	ErrUnknownRegion     = errors.New("unknown region")
	ErrRegionLocked      = errors.New("region can no longer be changed")
	ErrUnauthorized      = errors.New("unauthorized")
)

// InvalidDateError reports a malformed date key. It is never coerced to today.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// BeforeWindowError is returned by the write gate for activity writes that
// target a date before the window starts.
type BeforeWindowError struct {
	Target      CalendarDate
	WindowStart CalendarDate
}

func (e *BeforeWindowError) Error() string {
	return fmt.Sprintf("cannot record activity on %s: observance starts on %s", e.Target, e.WindowStart)
}

func (e *BeforeWindowError) Unwrap() error { return ErrBeforeWindow }
