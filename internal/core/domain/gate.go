package domain

// Authorize decides whether a write may proceed. Metadata is always allowed;
// activity fields are rejected for dates before the window. A rejection never
// touches the ledger.
func Authorize(kind WriteKind, target CalendarDate, window CalendarWindow) error {
	if target.IsZero() {
		return &InvalidDateError{Reason: "empty date"}
	}
	if kind == WriteActivityField && window.IsBefore(target) {
		return &BeforeWindowError{Target: target, WindowStart: window.Start}
	}
	return nil
}
