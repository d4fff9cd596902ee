// Package analytics computes engagement streaks and derived statistics over a
// single user's records. Every function is pure: callers pass the records and
// the reference day, and nothing here reads a clock or touches storage.
package analytics

import (
	"sort"

	"github.com/lazypower/cony/internal/domain"
)

// Streaks is the engagement summary for one set of check-in days.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// DaySet is a de-duplicated set of calendar days.
type DaySet map[domain.Day]struct{}

// NewDaySet collects days, counting repeated days once.
func NewDaySet(days ...domain.Day) DaySet {
	set := make(DaySet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

// Has reports whether d is in the set.
func (s DaySet) Has(d domain.Day) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the distinct days in ascending order.
func (s DaySet) Sorted() []domain.Day {
	out := make([]domain.Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EmotionDays returns the set of days with at least one emotion check-in.
func EmotionDays(entries []domain.EmotionEntry) DaySet {
	set := make(DaySet, len(entries))
	for _, e := range entries {
		set[e.Date] = struct{}{}
	}
	return set
}

// ThoughtDays returns the set of days with at least one thought record.
func ThoughtDays(records []domain.ThoughtRecord) DaySet {
	set := make(DaySet, len(records))
	for _, r := range records {
		set[r.Date] = struct{}{}
	}
	return set
}

// ComputeStreaks returns the current and longest streaks of days.
func ComputeStreaks(days DaySet, today domain.Day) Streaks {
	return Streaks{
		Current: CurrentStreak(days, today),
		Longest: LongestStreak(days),
	}
}

// CurrentStreak counts consecutive days ending at today. A missing today
// yields 0 even when yesterday continues an unbroken run: only same-day
// engagement keeps the streak alive.
func CurrentStreak(days DaySet, today domain.Day) int {
	if !today.Valid() || !days.Has(today) {
		return 0
	}
	streak := 0
	for d := today; days.Has(d); d = d.AddDays(-1) {
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days in the set.
func LongestStreak(days DaySet) int {
	sorted := days.Sorted()
	if len(sorted) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDays(1) == sorted[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Tier buckets a streak length for motivational messaging.
type Tier string

const (
	TierNone     Tier = "none"
	TierStart    Tier = "start"
	TierBuilding Tier = "building"
	TierStrong   Tier = "strong"
	TierLegend   Tier = "legend"
)

// StreakTier maps a streak length onto its Tier.
func StreakTier(streak int) Tier {
	switch {
	case streak <= 0:
		return TierNone
	case streak == 1:
		return TierStart
	case streak < 7:
		return TierBuilding
	case streak < 30:
		return TierStrong
	default:
		return TierLegend
	}
}
