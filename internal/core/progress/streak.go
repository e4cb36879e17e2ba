package progress

import (
	"sort"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
)

// CalculateStreak computes the current and longest streak of a goal in units
// of periods, evaluated at "now". Completions are reduced to the distinct set
// of periods they fall into; a period counts as done when it has at least one
// completion, regardless of the goal's target count.
//
// The current period not being logged yet does not break the streak: if now's
// period is empty the walk starts from the immediately preceding period
// instead. Two consecutive empty periods mean the streak is over.
func CalculateStreak(g *domain.Goal, completions []*domain.Completion, now time.Time) domain.StreakResult {
	result := domain.StreakResult{}

	if last := lastCompletedAt(completions); last != nil {
		result.LastCompletedDate = last
	}

	switch g.GoalType {
	case domain.GoalTypeRecurring:
		// handled below
	default:
		// Finite goals have no period reset, so streaks do not apply.
		return result
	}

	startBoundary := PeriodStart(g, g.StartDate)
	done := completedPeriods(g, completions)
	if len(done) == 0 {
		return result
	}

	result.CurrentStreak = currentStreak(g, done, now, startBoundary)
	result.LongestStreak = longestStreak(g, done)

	return result
}

func lastCompletedAt(completions []*domain.Completion) *time.Time {
	var last *time.Time
	for _, c := range completions {
		if last == nil || c.CompletedAt.After(*last) {
			t := c.CompletedAt
			last = &t
		}
	}
	return last
}

// completedPeriods reduces the completion list to the distinct set of periods
// containing at least one completion, keyed by the period-start day key.
// Completions before the goal's start date are outside any period and dropped.
func completedPeriods(g *domain.Goal, completions []*domain.Completion) map[string]time.Time {
	done := make(map[string]time.Time)
	start := timeutil.StartOfDay(g.StartDate)

	for _, c := range completions {
		if c.CompletedAt.Before(start) {
			continue
		}
		ps := PeriodStart(g, c.CompletedAt)
		done[timeutil.DayKey(ps)] = ps
	}

	return done
}

func currentStreak(g *domain.Goal, done map[string]time.Time, now time.Time, startBoundary time.Time) int {
	cursor := PeriodStart(g, now)

	if _, ok := done[timeutil.DayKey(cursor)]; !ok {
		// Today's period may simply not be logged yet. Only an empty
		// preceding period confirms the break.
		prev := PreviousPeriodStart(g, cursor)
		if _, ok := done[timeutil.DayKey(prev)]; !ok {
			return 0
		}
		cursor = prev
	}

	count := 0
	for !cursor.Before(startBoundary) {
		if _, ok := done[timeutil.DayKey(cursor)]; !ok {
			break
		}
		count++
		cursor = PreviousPeriodStart(g, cursor)
	}

	return count
}

// longestStreak finds the longest run of adjacent completed periods.
// Adjacency is checked with PreviousPeriodStart rather than raw date
// subtraction because month and DST week lengths vary.
func longestStreak(g *domain.Goal, done map[string]time.Time) int {
	starts := make([]time.Time, 0, len(done))
	for _, ps := range done {
		starts = append(starts, ps)
	}
	sort.Slice(starts, func(i, j int) bool {
		return starts[i].After(starts[j])
	})

	longest := 0
	run := 1
	for i := 0; i < len(starts)-1; i++ {
		if PreviousPeriodStart(g, starts[i]).Equal(starts[i+1]) {
			run++
		} else {
			if run > longest {
				longest = run
			}
			run = 1
		}
	}
	if run > longest {
		longest = run
	}

	return longest
}
