package progress

import (
	"math"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
)

// CalculateCompletionStats computes expected-vs-actual completions for a goal
// over [windowStart, windowEnd]. The window is clipped to the goal's active
// span first; an empty clipped window yields zero stats for the original
// bounds. TotalCompletions counts distinct calendar days with at least one
// completion, so over-logging a single day cannot inflate the rate.
func CalculateCompletionStats(g *domain.Goal, completions []*domain.Completion, windowStart, windowEnd time.Time) domain.CompletionStats {
	stats := domain.CompletionStats{
		PeriodStart: timeutil.DayKey(windowStart),
		PeriodEnd:   timeutil.DayKey(windowEnd),
	}

	clippedStart := windowStart
	if g.StartDate.After(clippedStart) {
		clippedStart = g.StartDate
	}
	clippedEnd := windowEnd
	if g.EndDate != nil && g.EndDate.Before(clippedEnd) {
		clippedEnd = *g.EndDate
	}

	if timeutil.DaysBetween(clippedStart, clippedEnd) > 0 {
		return stats
	}

	stats.PeriodStart = timeutil.DayKey(clippedStart)
	stats.PeriodEnd = timeutil.DayKey(clippedEnd)

	from := timeutil.StartOfDay(clippedStart)
	to := timeutil.EndOfDay(clippedEnd)

	days := make(map[string]bool)
	for _, c := range completions {
		if c.CompletedAt.Before(from) || c.CompletedAt.After(to) {
			continue
		}
		days[timeutil.DayKey(c.CompletedAt)] = true
	}
	stats.TotalCompletions = len(days)

	stats.ExpectedCompletions = expectedCompletions(g, clippedStart, clippedEnd)
	if stats.ExpectedCompletions > 0 {
		rate := float64(stats.TotalCompletions) / float64(stats.ExpectedCompletions) * 100
		stats.CompletionRate = math.Min(100, math.Round(rate*10)/10)
	}

	return stats
}

// expectedCompletions is targetCount times the number of recurrence periods
// overlapping the clipped window. A non-positive target yields zero, which
// in turn forces a zero rate instead of a division by zero.
func expectedCompletions(g *domain.Goal, start, end time.Time) int {
	if g.TargetCount <= 0 {
		return 0
	}

	days := timeutil.DaysBetween(end, start) + 1

	var periods int
	switch g.Recurrence {
	case domain.RecurrenceWeekly:
		periods = (days + 6) / 7
	case domain.RecurrenceMonthly:
		// Count of calendar months the window touches: full months plus
		// the trailing partial month.
		periods = (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	case domain.RecurrenceCustom:
		length := periodLengthDays(g)
		periods = (days + length - 1) / length
	default:
		periods = days
	}

	return g.TargetCount * periods
}

// CalculateFiniteProgress computes the completed-vs-target view of a finite
// goal. Unlike recurring stats, every log entry counts once toward the total,
// with no per-day deduplication.
func CalculateFiniteProgress(g *domain.Goal, completions []*domain.Completion, now time.Time) domain.FiniteProgress {
	p := domain.FiniteProgress{
		Completed: len(completions),
		Target:    g.TargetCount,
	}

	if p.Target > 0 {
		pct := math.Round(float64(p.Completed) / float64(p.Target) * 100)
		p.Percentage = int(math.Min(100, pct))
		p.IsComplete = p.Completed >= p.Target
	}

	end := now
	if g.EndDate != nil {
		end = *g.EndDate
	}

	p.TotalDays = timeutil.DaysBetween(end, g.StartDate) + 1

	elapsed := timeutil.DaysBetween(now, g.StartDate) + 1
	if elapsed < 0 {
		elapsed = 0
	}
	p.DaysElapsed = elapsed

	if g.EndDate != nil {
		if remaining := timeutil.DaysBetween(*g.EndDate, now); remaining > 0 {
			p.DaysRemaining = remaining
		}
		p.IsOverdue = !p.IsComplete && now.After(*g.EndDate)
	}

	return p
}
