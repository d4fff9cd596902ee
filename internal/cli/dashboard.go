package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lazypower/cony/internal/analytics"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/service/journal"
	"github.com/spf13/cobra"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorGood    = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#3CB371"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#D2691E", Dark: "#FFA500"}

	titleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).MarginBottom(1)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			Width(24)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show streaks, today's check-ins and the weekly trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(func(ctx context.Context, svc *journal.Service, sess auth.Session) error {
			d := svc.Dashboard(ctx, sess)
			fmt.Println(renderDashboard(d.Dashboard))
			if d.Partial {
				fmt.Println(lipgloss.NewStyle().Foreground(colorWarn).Render("some records could not be loaded; figures may be incomplete"))
			}
			return nil
		})
	},
}

func card(label, value, sub string) string {
	body := mutedStyle.Render(label) + "\n" + valueStyle.Render(value)
	if sub != "" {
		body += "\n" + mutedStyle.Render(sub)
	}
	return cardStyle.Render(body)
}

// renderDashboard lays out the summary as cards, a trend chart and lists.
func renderDashboard(d analytics.Dashboard) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard · " + string(d.Today)))
	b.WriteString("\n")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Check-in streak", fmt.Sprintf("%d days", d.Streaks.Current),
			fmt.Sprintf("best %d · %s", d.Streaks.Longest, d.StreakTier)),
		card("CBT streak", fmt.Sprintf("%d days", d.CBTStreak), string(d.CBTStreakTier)),
		card("Today's mood", moodValue(d.AverageMood, len(d.TodayEntries)),
			fmt.Sprintf("%d check-ins", len(d.TodayEntries))),
		card("Totals", fmt.Sprintf("%d / %d", d.TotalEmotions, d.TotalThoughts), "emotions / thoughts"),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Last 7 days"))
	b.WriteString("\n")
	b.WriteString(renderTrend(d.Report.Trend))
	b.WriteString("\n")

	if len(d.Report.TopEmotions) > 0 {
		b.WriteString(titleStyle.Render("Top emotions"))
		b.WriteString("\n")
		for _, e := range d.Report.TopEmotions {
			fmt.Fprintf(&b, "  %-14s %d\n", e.Emotion, e.Count)
		}
		b.WriteString("\n")
	}

	if len(d.RecentThoughts) > 0 {
		b.WriteString(titleStyle.Render("Recent thought records"))
		b.WriteString("\n")
		for _, r := range d.RecentThoughts {
			fmt.Fprintf(&b, "  %s  %s  %s\n", r.Date, truncate(r.Situation, 40), improvement(r))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func moodValue(avg float64, n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f / 10", avg)
}

// improvement shows pre -> post intensity, green when it dropped.
func improvement(r domain.ThoughtRecord) string {
	style := lipgloss.NewStyle().Foreground(colorGood)
	if r.Improvement() <= 0 {
		style = lipgloss.NewStyle().Foreground(colorWarn)
	}
	return style.Render(fmt.Sprintf("%d -> %d", r.PreIntensity, r.PostIntensity))
}

// renderTrend draws one bar per day scaled to the 1-10 intensity range.
func renderTrend(days []analytics.DayMood) string {
	const width = 20
	bar := lipgloss.NewStyle().Foreground(colorPrimary)
	var b strings.Builder
	for _, d := range days {
		label := string(d.Date)
		if len(label) >= 10 {
			label = label[5:]
		}
		if d.Count == 0 {
			fmt.Fprintf(&b, "  %s %s\n", label, mutedStyle.Render("·"))
			continue
		}
		n := int(d.Average / domain.MaxIntensity * width)
		if n < 1 {
			n = 1
		}
		fmt.Fprintf(&b, "  %s %s %.1f\n", label, bar.Render(strings.Repeat("█", n)), d.Average)
	}
	return b.String()
}
