// Package progress implements the period-based progress engine: streaks,
// expected-vs-actual completion rates and calendar heatmaps, computed as pure
// functions over a goal definition and its raw completion timestamps.
package progress

import (
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
)

// approxDaysPerMonth is the 30-day month approximation used for
// custom-recurrence period lengths. Changing it shifts period boundaries
// and expected-completion counts for existing goals.
const approxDaysPerMonth = 30

// periodLengthDays returns the period length of a custom-recurrence goal in
// days. A missing custom range degrades to a 1-day period.
func periodLengthDays(g *domain.Goal) int {
	if g.Custom == nil {
		return 1
	}
	switch g.Custom.Unit {
	case domain.CustomUnitDays:
		return g.Custom.Value
	case domain.CustomUnitWeeks:
		return g.Custom.Value * 7
	case domain.CustomUnitMonths:
		return g.Custom.Value * approxDaysPerMonth
	default:
		return 1
	}
}

// PeriodStart maps an instant to the start of the recurrence period it
// belongs to. Custom periods are anchored to the goal's start date; all
// others align to calendar day/week/month boundaries.
func PeriodStart(g *domain.Goal, t time.Time) time.Time {
	switch g.Recurrence {
	case domain.RecurrenceWeekly:
		return timeutil.StartOfWeek(t)
	case domain.RecurrenceMonthly:
		return timeutil.StartOfMonth(t)
	case domain.RecurrenceCustom:
		anchor := timeutil.StartOfDay(g.StartDate)
		length := periodLengthDays(g)
		days := timeutil.DaysBetween(t, g.StartDate)
		if days < 0 {
			return anchor
		}
		return anchor.AddDate(0, 0, (days/length)*length)
	default:
		return timeutil.StartOfDay(t)
	}
}

// PreviousPeriodStart steps exactly one period back from a known period-start
// instant. It is the exact inverse of the stepping PeriodStart performs, so
// repeated application walks distinct adjacent periods with no gaps.
func PreviousPeriodStart(g *domain.Goal, periodStart time.Time) time.Time {
	switch g.Recurrence {
	case domain.RecurrenceWeekly:
		return periodStart.AddDate(0, 0, -7)
	case domain.RecurrenceMonthly:
		return periodStart.AddDate(0, -1, 0)
	case domain.RecurrenceCustom:
		return periodStart.AddDate(0, 0, -periodLengthDays(g))
	default:
		return periodStart.AddDate(0, 0, -1)
	}
}
