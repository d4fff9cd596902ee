package analytics

import (
	"sort"

	"github.com/lazypower/cony/internal/domain"
)

// TrendWindow is the number of days covered by the mood trend and the weekly
// counts, ending today inclusive.
const TrendWindow = 7

// TopEmotionLimit caps the TopEmotions result.
const TopEmotionLimit = 5

// DayMood is one point of the rolling mood trend.
type DayMood struct {
	Date    domain.Day `json:"date"`
	Average float64    `json:"average"`
	Count   int        `json:"count"`
}

// EmotionCount is how often a label was logged.
type EmotionCount struct {
	Emotion domain.Emotion `json:"emotion"`
	Count   int            `json:"count"`
}

// ThoughtImprovement is the per-record intensity drop.
type ThoughtImprovement struct {
	ID          string     `json:"id"`
	Date        domain.Day `json:"date"`
	Improvement int        `json:"improvement"`
}

// WeeklyCounts is how many records fall in the trailing window.
type WeeklyCounts struct {
	From     domain.Day `json:"from"`
	To       domain.Day `json:"to"`
	Emotions int        `json:"emotions"`
	Thoughts int        `json:"thoughts"`
}

// mean returns sum/n, or 0 for an empty input.
func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// MoodTrend reports the average intensity and count for each of the
// TrendWindow days ending today, oldest first.
func MoodTrend(entries []domain.EmotionEntry, today domain.Day) []DayMood {
	type acc struct{ sum, n int }
	byDay := make(map[domain.Day]*acc, TrendWindow)
	days := make([]domain.Day, TrendWindow)
	for i := range days {
		d := today.AddDays(i - (TrendWindow - 1))
		days[i] = d
		byDay[d] = &acc{}
	}

	for _, e := range entries {
		if a, ok := byDay[e.Date]; ok {
			a.sum += e.Intensity
			a.n++
		}
	}

	out := make([]DayMood, TrendWindow)
	for i, d := range days {
		a := byDay[d]
		out[i] = DayMood{Date: d, Average: mean(a.sum, a.n), Count: a.n}
	}
	return out
}

// WeekAverage is the mean of the trend's daily averages over the whole
// window, so days without check-ins pull it down.
func WeekAverage(trend []DayMood) float64 {
	if len(trend) == 0 {
		return 0
	}
	var sum float64
	for _, d := range trend {
		sum += d.Average
	}
	return sum / float64(len(trend))
}

// AverageMood is the mean intensity across all entries.
func AverageMood(entries []domain.EmotionEntry) float64 {
	sum := 0
	for _, e := range entries {
		sum += e.Intensity
	}
	return mean(sum, len(entries))
}

// TopEmotions counts entries per label and returns the most frequent
// TopEmotionLimit labels. Ties keep the order in which labels first appear
// in entries.
func TopEmotions(entries []domain.EmotionEntry) []EmotionCount {
	index := make(map[domain.Emotion]int)
	counts := []EmotionCount{}
	for _, e := range entries {
		i, ok := index[e.Emotion]
		if !ok {
			i = len(counts)
			index[e.Emotion] = i
			counts = append(counts, EmotionCount{Emotion: e.Emotion})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > TopEmotionLimit {
		counts = counts[:TopEmotionLimit]
	}
	return counts
}

// Improvements lists pre minus post intensity for every record, in input order.
func Improvements(records []domain.ThoughtRecord) []ThoughtImprovement {
	out := make([]ThoughtImprovement, len(records))
	for i, r := range records {
		out[i] = ThoughtImprovement{
			ID:          r.ID.String(),
			Date:        r.Date,
			Improvement: r.Improvement(),
		}
	}
	return out
}

// AverageImprovement is the mean of pre minus post intensity, 0 with no records.
func AverageImprovement(records []domain.ThoughtRecord) float64 {
	sum := 0
	for _, r := range records {
		sum += r.Improvement()
	}
	return mean(sum, len(records))
}

// InWindow reports whether d falls within the TrendWindow days ending today.
func InWindow(d, today domain.Day) bool {
	from := today.AddDays(-(TrendWindow - 1))
	return !d.Before(from) && !d.After(today)
}

// CountWeekly counts emotions and thoughts dated within the trailing window,
// comparing calendar days rather than elapsed time.
func CountWeekly(entries []domain.EmotionEntry, records []domain.ThoughtRecord, today domain.Day) WeeklyCounts {
	wc := WeeklyCounts{From: today.AddDays(-(TrendWindow - 1)), To: today}
	for _, e := range entries {
		if InWindow(e.Date, today) {
			wc.Emotions++
		}
	}
	for _, r := range records {
		if InWindow(r.Date, today) {
			wc.Thoughts++
		}
	}
	return wc
}
