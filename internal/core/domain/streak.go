package domain

import "sort"

type StreakState struct {
	Current  int           `json:"current"`
	Best     int           `json:"best"`
	LastDate *CalendarDate `json:"last_date,omitempty"`
}

type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// ComputeStreak counts consecutive completed days ending at today (or at the
// latest in-window date when today is past the window). Only dates inside the
// window and not after today are considered. It is pure and safe to call on
// any ledger snapshot.
func ComputeStreak(ledger *Ledger, activity ActivityType, window CalendarWindow, today CalendarDate, priorBest int) StreakState {
	dates := streakDates(ledger, window, today)

	current := 0
	var last *CalendarDate
	for i, d := range dates {
		if !ledger.IsActivityCompleted(d, activity) {
			break
		}
		if i > 0 && dates[i-1].DaysSince(d) != 1 {
			break
		}
		if current == 0 {
			end := d
			last = &end
		}
		current++
	}

	best := max(priorBest, current, longestRun(ledger, activity, dates))

	elapsed := window.DayIndex(today)
	if current > elapsed {
		current = elapsed
	}
	if current == 0 {
		last = nil
	}
	best = min(best, window.TotalDays)
	best = max(best, current)

	return StreakState{Current: current, Best: best, LastDate: last}
}

// streakDates is today plus every ledger date, deduplicated, newest first and
// restricted to [window.Start, min(today, window.End)].
func streakDates(ledger *Ledger, window CalendarWindow, today CalendarDate) []CalendarDate {
	seen := make(map[CalendarDate]bool)
	var out []CalendarDate
	add := func(d CalendarDate) {
		if seen[d] || !window.IsWithin(d) || d.After(today) {
			return
		}
		seen[d] = true
		out = append(out, d)
	}
	add(today)
	for _, d := range ledger.Dates() {
		add(d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

func longestRun(ledger *Ledger, activity ActivityType, desc []CalendarDate) int {
	longest, run := 0, 0
	for i, d := range desc {
		if !ledger.IsActivityCompleted(d, activity) {
			run = 0
			continue
		}
		if run > 0 && desc[i-1].DaysSince(d) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// ComputeAllStreaks recomputes every streak activity, carrying forward stored bests.
func ComputeAllStreaks(ledger *Ledger, window CalendarWindow, today CalendarDate, prior map[ActivityType]StreakState) map[ActivityType]StreakState {
	out := make(map[ActivityType]StreakState, len(StreakActivities))
	for _, a := range StreakActivities {
		out[a] = ComputeStreak(ledger, a, window, today, prior[a].Best)
	}
	return out
}
