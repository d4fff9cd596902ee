package analytics

import "github.com/lazypower/cony/internal/domain"

// RecentThoughtLimit is how many thought records the dashboard shows.
const RecentThoughtLimit = 3

// Report is the analytics view for one user.
type Report struct {
	Today              domain.Day           `json:"today"`
	Trend              []DayMood            `json:"trend"`
	WeekAverage        float64              `json:"week_average"`
	TopEmotions        []EmotionCount       `json:"top_emotions"`
	AverageImprovement float64              `json:"average_improvement"`
	Improvements       []ThoughtImprovement `json:"improvements"`
	Weekly             WeeklyCounts         `json:"weekly"`
}

// BuildReport derives the analytics view from a user's records.
func BuildReport(entries []domain.EmotionEntry, records []domain.ThoughtRecord, today domain.Day) Report {
	trend := MoodTrend(entries, today)
	return Report{
		Today:              today,
		Trend:              trend,
		WeekAverage:        WeekAverage(trend),
		TopEmotions:        TopEmotions(entries),
		AverageImprovement: AverageImprovement(records),
		Improvements:       Improvements(records),
		Weekly:             CountWeekly(entries, records, today),
	}
}

// Dashboard is the landing summary for one user.
type Dashboard struct {
	Today          domain.Day             `json:"today"`
	Streaks        Streaks                `json:"streaks"`
	StreakTier     Tier                   `json:"streak_tier"`
	CBTStreak      int                    `json:"cbt_streak"`
	CBTStreakTier  Tier                   `json:"cbt_streak_tier"`
	TodayEntries   []domain.EmotionEntry  `json:"today_entries"`
	AverageMood    float64                `json:"average_mood"`
	TotalEmotions  int                    `json:"total_emotions"`
	TotalThoughts  int                    `json:"total_thoughts"`
	RecentThoughts []domain.ThoughtRecord `json:"recent_thoughts"`
	Report         Report                 `json:"report"`
}

// BuildDashboard derives the dashboard. entries and records are expected
// newest first, as repositories list them.
func BuildDashboard(entries []domain.EmotionEntry, records []domain.ThoughtRecord, today domain.Day) Dashboard {
	streaks := ComputeStreaks(EmotionDays(entries), today)
	cbt := CurrentStreak(ThoughtDays(records), today)

	todays := []domain.EmotionEntry{}
	for _, e := range entries {
		if e.Date == today {
			todays = append(todays, e)
		}
	}

	recent := records
	if len(recent) > RecentThoughtLimit {
		recent = recent[:RecentThoughtLimit]
	}
	if recent == nil {
		recent = []domain.ThoughtRecord{}
	}

	return Dashboard{
		Today:          today,
		Streaks:        streaks,
		StreakTier:     StreakTier(streaks.Current),
		CBTStreak:      cbt,
		CBTStreakTier:  StreakTier(cbt),
		TodayEntries:   todays,
		AverageMood:    AverageMood(entries),
		TotalEmotions:  len(entries),
		TotalThoughts:  len(records),
		RecentThoughts: recent,
		Report:         BuildReport(entries, records, today),
	}
}
