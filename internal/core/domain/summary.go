package domain

import "github.com/shopspring/decimal"

type ActivitySummary struct {
	Activity       ActivityType    `json:"activity"`
	DaysCompleted  int             `json:"days_completed"`
	CompletionRate decimal.Decimal `json:"completion_rate"`
	DailyProgress  []bool          `json:"daily_progress"`
	CurrentStreak  int             `json:"current_streak"`
	BestStreak     int             `json:"best_streak"`
}

type MonthlySummary struct {
	Window           CalendarWindow    `json:"calendar_window"`
	Today            CalendarDate      `json:"today"`
	DaysElapsed      int               `json:"days_elapsed"`
	RegionUnresolved bool              `json:"region_unresolved"`
	Activities       []ActivitySummary `json:"activities"`
	PrayersPerDay    []int             `json:"prayers_per_day"`
	TotalPrayers     int               `json:"total_prayers"`
	PrayerRate       decimal.Decimal   `json:"prayer_completion_rate"`
	JuzRead          []int             `json:"juz_read"`
	CombinedScore    int64             `json:"combined_streak_score"`
}
