package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

var (
	hundred      = decimal.NewFromInt(100)
	scoreWeights = map[domain.ActivityType]decimal.Decimal{
		domain.ActivityFasting:  decimal.RequireFromString("0.4"),
		domain.ActivityTaraweeh: decimal.RequireFromString("0.2"),
		domain.ActivityQuran:    decimal.RequireFromString("0.4"),
	}
)

type StatsService struct {
	repo    domain.TrackerRepository
	catalog *domain.RegionCatalog
	clock   Clock
}

func NewStatsService(repo domain.TrackerRepository, catalog *domain.RegionCatalog, clock Clock) *StatsService {
	return &StatsService{
		repo:    repo,
		catalog: catalog,
		clock:   clock,
	}
}

func (s *StatsService) GetMonthlySummary(ctx context.Context, userID string) (*domain.MonthlySummary, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	rec, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	window, unresolved := s.catalog.Resolve(rec.Region)
	summary := Summarize(rec, window, s.clock.Today())
	summary.RegionUnresolved = unresolved
	return summary, nil
}

// Summarize walks day 1 up to today's day index of the window.
func Summarize(rec *domain.UserRecord, window domain.CalendarWindow, today domain.CalendarDate) *domain.MonthlySummary {
	elapsed := window.DayIndex(today)
	streaks := domain.ComputeAllStreaks(rec.Ledger, window, today, rec.Streaks)

	summary := &domain.MonthlySummary{
		Window:        window,
		Today:         today,
		DaysElapsed:   elapsed,
		Activities:    make([]domain.ActivitySummary, 0, len(domain.StreakActivities)),
		PrayersPerDay: make([]int, 0, elapsed),
		JuzRead:       []int{},
	}

	for _, a := range domain.StreakActivities {
		as := domain.ActivitySummary{
			Activity:      a,
			DailyProgress: make([]bool, 0, elapsed),
			CurrentStreak: streaks[a].Current,
			BestStreak:    streaks[a].Best,
		}
		for i := 0; i < elapsed; i++ {
			done := rec.Ledger.IsActivityCompleted(window.Start.AddDays(i), a)
			as.DailyProgress = append(as.DailyProgress, done)
			if done {
				as.DaysCompleted++
			}
		}
		as.CompletionRate = rate(as.DaysCompleted, elapsed)
		summary.Activities = append(summary.Activities, as)
	}

	juz := make(map[int]bool)
	for i := 0; i < elapsed; i++ {
		day := rec.Ledger.Get(window.Start.AddDays(i))
		n := day.PrayersCompleted()
		summary.PrayersPerDay = append(summary.PrayersPerDay, n)
		summary.TotalPrayers += n
		for _, j := range day.JuzRead {
			juz[j] = true
		}
	}
	summary.PrayerRate = rate(summary.TotalPrayers, elapsed*len(domain.Prayers))

	for j := range juz {
		summary.JuzRead = append(summary.JuzRead, j)
	}
	sort.Ints(summary.JuzRead)

	summary.CombinedScore = CombinedScore(streaks, window.TotalDays)
	return summary
}

// CombinedScore weighs current streaks as a share of the full observance:
// fasting 40%, taraweeh 20%, quran 40%.
func CombinedScore(streaks map[domain.ActivityType]domain.StreakState, totalDays int) int64 {
	if totalDays <= 0 {
		return 0
	}
	total := decimal.Zero
	days := decimal.NewFromInt(int64(totalDays))
	for a, w := range scoreWeights {
		cur := decimal.NewFromInt(int64(streaks[a].Current))
		total = total.Add(cur.Div(days).Mul(hundred).Mul(w))
	}
	return total.Round(0).IntPart()
}

func rate(done, possible int) decimal.Decimal {
	if possible <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(done)).Mul(hundred).Div(decimal.NewFromInt(int64(possible))).Round(1)
}
