package domain

import "time"

// StreakResult reports consecutive completed periods for a recurring goal.
// Finite goals always report zero streaks; LastCompletedDate is still filled
// from the most recent raw completion timestamp.
type StreakResult struct {
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	LastCompletedDate *time.Time `json:"last_completed_date,omitempty"`
}

// CompletionStats is the expected-vs-actual view over a date window.
// TotalCompletions counts distinct days with at least one completion;
// CompletionRate is clamped to [0, 100] with one decimal.
type CompletionStats struct {
	TotalCompletions     int     `json:"total_completions"`
	ExpectedCompletions  int     `json:"expected_completions"`
	CompletionRate       float64 `json:"completion_rate"`
	PeriodStart          string  `json:"period_start"`
	PeriodEnd            string  `json:"period_end"`
}

// FiniteProgress is the progress view of a finite goal against its deadline.
type FiniteProgress struct {
	Completed     int  `json:"completed"`
	Target        int  `json:"target"`
	Percentage    int  `json:"percentage"`
	DaysElapsed   int  `json:"days_elapsed"`
	DaysRemaining int  `json:"days_remaining"`
	TotalDays     int  `json:"total_days"`
	IsComplete    bool `json:"is_complete"`
	IsOverdue     bool `json:"is_overdue"`
}

// HeatmapDay is one calendar-day cell of a completion heatmap.
// Intensity is bucketed 0-4 for rendering. IsBinaryComplete is only set in
// the single-goal view.
type HeatmapDay struct {
	Date             string `json:"date"`
	CompletionCount  int    `json:"completion_count"`
	TotalUnits       int    `json:"total_units"`
	Intensity        int    `json:"intensity"`
	IsBinaryComplete *bool  `json:"is_binary_complete,omitempty"`
}
