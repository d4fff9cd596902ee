package cli

import (
	"strings"
	"testing"

	"github.com/lazypower/cony/internal/analytics"
	"github.com/lazypower/cony/internal/domain"
)

func TestRenderDashboard(t *testing.T) {
	today := domain.Day("2026-10-19")
	entries := []domain.EmotionEntry{
		{Emotion: domain.EmotionCalm, Intensity: 6, Date: today},
		{Emotion: domain.EmotionCalm, Intensity: 8, Date: "2026-10-18"},
	}
	records := []domain.ThoughtRecord{
		{Date: today, Situation: "exam", Emotion: "anxiety", PreIntensity: 9, PostIntensity: 4},
	}
	out := renderDashboard(analytics.BuildDashboard(entries, records, today))

	for _, want := range []string{"2026-10-19", "2 days", "calm", "exam", "9 -> 4", "10-18"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTrendEmptyDays(t *testing.T) {
	out := renderTrend([]analytics.DayMood{
		{Date: "2026-10-18"},
		{Date: "2026-10-19", Average: 10, Count: 1},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "·") {
		t.Errorf("empty day not marked: %q", lines[0])
	}
	if !strings.Contains(lines[1], strings.Repeat("█", 20)) {
		t.Errorf("full bar missing: %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("ñandúes everywhere", 7); got != "ñandúe…" {
		t.Errorf("truncate = %q", got)
	}
}
