package progress

import (
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
)

// SingleGoalHeatmap buckets a goal's completions by calendar day across
// [rangeStart, rangeEnd] inclusive, in ascending date order. The view is
// binary: a day is either done (intensity 4) or not (intensity 0).
func SingleGoalHeatmap(completions []*domain.Completion, rangeStart, rangeEnd time.Time) []domain.HeatmapDay {
	counts := make(map[string]int)
	for _, c := range completions {
		counts[timeutil.DayKey(c.CompletedAt)]++
	}

	var days []domain.HeatmapDay
	cursor := timeutil.StartOfDay(rangeStart)
	last := timeutil.StartOfDay(rangeEnd)

	for !cursor.After(last) {
		key := timeutil.DayKey(cursor)
		count := counts[key]

		complete := count > 0
		intensity := 0
		if complete {
			intensity = 4
		}

		days = append(days, domain.HeatmapDay{
			Date:             key,
			CompletionCount:  count,
			TotalUnits:       1,
			Intensity:        intensity,
			IsBinaryComplete: &complete,
		})

		cursor = cursor.AddDate(0, 0, 1)
	}

	return days
}

// MultiGoalHeatmap aggregates completion density across goals. For each day
// in the range, TotalUnits is the number of non-archived goals whose active
// span covers the day and CompletionCount is the number of distinct goals
// with at least one completion that day. Intensity buckets the ratio.
func MultiGoalHeatmap(goals []*domain.Goal, completions []*domain.Completion, rangeStart, rangeEnd time.Time) []domain.HeatmapDay {
	known := make(map[string]bool, len(goals))
	for _, g := range goals {
		known[g.ID] = true
	}

	// day key -> set of goal IDs completed that day
	doneByDay := make(map[string]map[string]bool)
	for _, c := range completions {
		if !known[c.GoalID] {
			continue
		}
		key := timeutil.DayKey(c.CompletedAt)
		if doneByDay[key] == nil {
			doneByDay[key] = make(map[string]bool)
		}
		doneByDay[key][c.GoalID] = true
	}

	var days []domain.HeatmapDay
	cursor := timeutil.StartOfDay(rangeStart)
	last := timeutil.StartOfDay(rangeEnd)

	for !cursor.After(last) {
		key := timeutil.DayKey(cursor)

		total := 0
		for _, g := range goals {
			if goalActiveOn(g, cursor) {
				total++
			}
		}

		completed := len(doneByDay[key])

		days = append(days, domain.HeatmapDay{
			Date:            key,
			CompletionCount: completed,
			TotalUnits:      total,
			Intensity:       intensityBucket(completed, total),
		})

		cursor = cursor.AddDate(0, 0, 1)
	}

	return days
}

func goalActiveOn(g *domain.Goal, day time.Time) bool {
	if g.ArchivedAt != nil {
		return false
	}
	if timeutil.DaysBetween(day, g.StartDate) < 0 {
		return false
	}
	if g.EndDate != nil && timeutil.DaysBetween(day, *g.EndDate) > 0 {
		return false
	}
	return true
}

// intensityBucket maps a completed/total ratio to the 0-4 display scale:
// 0% -> 0, <=25% -> 1, <=50% -> 2, <=75% -> 3, above -> 4.
func intensityBucket(completed, total int) int {
	if total == 0 || completed == 0 {
		return 0
	}

	pct := float64(completed) / float64(total) * 100
	switch {
	case pct <= 25:
		return 1
	case pct <= 50:
		return 2
	case pct <= 75:
		return 3
	default:
		return 4
	}
}
