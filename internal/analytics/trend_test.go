package analytics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

func emotion(label domain.Emotion, intensity int, day domain.Day) domain.EmotionEntry {
	return domain.EmotionEntry{ID: uuid.New(), Emotion: label, Intensity: intensity, Date: day}
}

func thought(pre, post int, day domain.Day) domain.ThoughtRecord {
	return domain.ThoughtRecord{ID: uuid.New(), PreIntensity: pre, PostIntensity: post, Date: day}
}

func TestMoodTrendEmpty(t *testing.T) {
	got := MoodTrend(nil, d0)
	want := []DayMood{
		{Date: "2024-01-04"}, {Date: "2024-01-05"}, {Date: "2024-01-06"},
		{Date: "2024-01-07"}, {Date: "2024-01-08"}, {Date: "2024-01-09"},
		{Date: "2024-01-10"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MoodTrend mismatch (-want +got):\n%s", diff)
	}
}

func TestMoodTrendSameDayAverage(t *testing.T) {
	entries := []domain.EmotionEntry{
		emotion(domain.EmotionCalm, 4, d0),
		emotion(domain.EmotionHope, 8, d0),
		emotion(domain.EmotionFear, 2, d0.AddDays(-2)),
		emotion(domain.EmotionFear, 9, d0.AddDays(-7)), // outside the window
		emotion(domain.EmotionFear, 9, d0.AddDays(1)),  // future
	}
	got := MoodTrend(entries, d0)
	if len(got) != TrendWindow {
		t.Fatalf("len = %d, want %d", len(got), TrendWindow)
	}
	if diff := cmp.Diff(DayMood{Date: d0, Average: 6.0, Count: 2}, got[6]); diff != "" {
		t.Errorf("today mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DayMood{Date: d0.AddDays(-2), Average: 2, Count: 1}, got[4]); diff != "" {
		t.Errorf("day-2 mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, d := range got {
		total += d.Count
	}
	if total != 3 {
		t.Errorf("counted %d entries in window, want 3", total)
	}
}

func TestWeekAverage(t *testing.T) {
	trend := MoodTrend([]domain.EmotionEntry{emotion(domain.EmotionCalm, 7, d0)}, d0)
	if got := WeekAverage(trend); got != 1.0 {
		t.Errorf("WeekAverage = %v, want 1", got)
	}
	if got := WeekAverage(nil); got != 0 {
		t.Errorf("WeekAverage(nil) = %v, want 0", got)
	}
}

func TestTopEmotions(t *testing.T) {
	entries := []domain.EmotionEntry{
		emotion(domain.EmotionCalm, 5, d0),
		emotion(domain.EmotionAnxiety, 5, d0),
		emotion(domain.EmotionAnxiety, 5, d0),
		emotion(domain.EmotionHope, 5, d0),
		emotion(domain.EmotionFear, 5, d0),
		emotion(domain.EmotionStress, 5, d0),
		emotion(domain.EmotionAnger, 5, d0),
		emotion(domain.EmotionCalm, 5, d0),
		emotion(domain.EmotionCalm, 5, d0),
	}
	want := []EmotionCount{
		{domain.EmotionCalm, 3},
		{domain.EmotionAnxiety, 2},
		{domain.EmotionHope, 1},
		{domain.EmotionFear, 1},
		{domain.EmotionStress, 1},
	}
	got := TopEmotions(entries)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TopEmotions mismatch (-want +got):\n%s", diff)
	}

	// Same input twice gives the same order.
	if diff := cmp.Diff(got, TopEmotions(entries)); diff != "" {
		t.Errorf("TopEmotions not deterministic:\n%s", diff)
	}
}

func TestTopEmotionsEmpty(t *testing.T) {
	got := TopEmotions(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("TopEmotions(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestAverageImprovement(t *testing.T) {
	records := []domain.ThoughtRecord{thought(8, 5, d0), thought(6, 6, d0)}
	if got := AverageImprovement(records); got != 1.5 {
		t.Errorf("AverageImprovement = %v, want 1.5", got)
	}
	if got := AverageImprovement(nil); got != 0 {
		t.Errorf("AverageImprovement(nil) = %v, want 0", got)
	}

	worse := []domain.ThoughtRecord{thought(3, 7, d0)}
	if got := AverageImprovement(worse); got != -4 {
		t.Errorf("AverageImprovement(worse) = %v, want -4", got)
	}
}

func TestImprovements(t *testing.T) {
	r := thought(9, 4, d0)
	got := Improvements([]domain.ThoughtRecord{r})
	want := []ThoughtImprovement{{ID: r.ID.String(), Date: d0, Improvement: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Improvements mismatch (-want +got):\n%s", diff)
	}
}

func TestCountWeekly(t *testing.T) {
	entries := []domain.EmotionEntry{
		emotion(domain.EmotionCalm, 5, d0),
		emotion(domain.EmotionCalm, 5, d0.AddDays(-6)), // first day of window
		emotion(domain.EmotionCalm, 5, d0.AddDays(-7)), // just outside
		emotion(domain.EmotionCalm, 5, d0.AddDays(1)),  // future
	}
	records := []domain.ThoughtRecord{
		thought(5, 3, d0.AddDays(-3)),
		thought(5, 3, d0.AddDays(-30)),
	}
	got := CountWeekly(entries, records, d0)
	want := WeeklyCounts{From: "2024-01-04", To: d0, Emotions: 2, Thoughts: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountWeekly mismatch (-want +got):\n%s", diff)
	}
}

func TestAverageMoodNeverNaN(t *testing.T) {
	if got := AverageMood(nil); math.IsNaN(got) || got != 0 {
		t.Errorf("AverageMood(nil) = %v, want 0", got)
	}
	entries := []domain.EmotionEntry{emotion(domain.EmotionCalm, 3, d0), emotion(domain.EmotionCalm, 6, d0)}
	if got := AverageMood(entries); got != 4.5 {
		t.Errorf("AverageMood = %v, want 4.5", got)
	}
}
