package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/services"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressFixture struct {
	svc      *services.ProgressService
	goalRepo *MockGoalRepo
	repo     *MockCompletionRepo
	clock    *timeutil.MockClock
}

func newProgressFixture(t *testing.T) progressFixture {
	t.Helper()
	goalRepo := NewMockGoalRepo()
	repo := NewMockCompletionRepo()
	clock := &timeutil.MockClock{FixedNow: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	return progressFixture{
		svc:      services.NewProgressService(goalRepo, repo, clock),
		goalRepo: goalRepo,
		repo:     repo,
		clock:    clock,
	}
}

func logOn(t *testing.T, f progressFixture, goal *domain.Goal, at time.Time) {
	t.Helper()
	c := domain.NewCompletion(goal.ID, goal.UserID, at)
	require.NoError(t, f.repo.Create(context.Background(), c))
}

func TestProgressService_GetStreak(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Consecutive days build a streak", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedStoredGoal(t, f.goalRepo, "user-1")
		logOn(t, f, goal, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC))
		logOn(t, f, goal, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC))
		logOn(t, f, goal, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

		result, err := f.svc.GetStreak(ctx, goal.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 3, result.CurrentStreak)
		assert.Equal(t, 3, result.LongestStreak)
	})

	t.Run("Fail: 404 semantics for another user's goal", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedStoredGoal(t, f.goalRepo, "user-1")

		_, err := f.svc.GetStreak(ctx, goal.ID, "user-2")
		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	})
}

func TestProgressService_GetCompletionStats(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Rate over an explicit window", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedStoredGoal(t, f.goalRepo, "user-1")
		logOn(t, f, goal, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
		logOn(t, f, goal, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))

		stats, err := f.svc.GetCompletionStats(ctx, goal.ID, "user-1",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalCompletions)
		assert.Equal(t, 4, stats.ExpectedCompletions)
		assert.InDelta(t, 50.0, stats.CompletionRate, 0.01)
	})

	t.Run("Success: Window clipped to goal start", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedStoredGoal(t, f.goalRepo, "user-1") // starts 2024-01-01
		logOn(t, f, goal, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
		logOn(t, f, goal, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))

		stats, err := f.svc.GetCompletionStats(ctx, goal.ID, "user-1",
			time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		)

		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", stats.PeriodStart)
		assert.Equal(t, 2, stats.ExpectedCompletions)
		assert.InDelta(t, 100.0, stats.CompletionRate, 0.01)
	})
}

func TestProgressService_GetFiniteProgress(t *testing.T) {
	ctx := context.Background()

	seedFinite := func(t *testing.T, f progressFixture) *domain.Goal {
		t.Helper()
		goal, err := domain.NewFiniteGoal("user-1", "Read 10 books", "", "", "", 10,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NoError(t, f.goalRepo.Create(ctx, goal))
		return goal
	}

	t.Run("Success: Progress against deadline", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedFinite(t, f)
		logOn(t, f, goal, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
		logOn(t, f, goal, time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC))

		progress, err := f.svc.GetFiniteProgress(ctx, goal.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, progress.Completed)
		assert.Equal(t, 20, progress.Percentage)
		assert.False(t, progress.IsOverdue)
	})

	t.Run("Fail: Recurring goal has no finite progress", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedStoredGoal(t, f.goalRepo, "user-1")

		_, err := f.svc.GetFiniteProgress(ctx, goal.ID, "user-1")
		assert.ErrorIs(t, err, domain.ErrInvalidGoalType)
	})
}

func TestProgressService_Heatmaps(t *testing.T) {
	ctx := context.Background()

	t.Run("Goal heatmap: one cell per requested day", func(t *testing.T) {
		f := newProgressFixture(t)
		goal := seedStoredGoal(t, f.goalRepo, "user-1")
		logOn(t, f, goal, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))

		days, err := f.svc.GetGoalHeatmap(ctx, goal.ID, "user-1",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		)

		require.NoError(t, err)
		require.Len(t, days, 3)
		assert.Equal(t, 4, days[1].Intensity)
	})

	t.Run("Overview heatmap: aggregates across goals", func(t *testing.T) {
		f := newProgressFixture(t)
		goalA := seedStoredGoal(t, f.goalRepo, "user-1")
		goalB := seedStoredGoal(t, f.goalRepo, "user-1")
		logOn(t, f, goalA, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
		logOn(t, f, goalB, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))

		days, err := f.svc.GetOverviewHeatmap(ctx, "user-1",
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		)

		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, 2, days[0].CompletionCount)
		assert.Equal(t, 2, days[0].TotalUnits)
		assert.Equal(t, 4, days[0].Intensity)
	})
}
