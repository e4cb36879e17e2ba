package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpellegrini/habitus/internal/core/domain"
)

// The router clock is pinned to 2024-01-10T12:00Z by setupRouter, so every
// assertion below is deterministic.

func TestGetStreak(t *testing.T) {
	t.Run("Success: unlogged today is forgiven", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")
		seedCompletion(t, env, goal, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC))

		req, _ := http.NewRequest("GET", "/api/v1/goals/"+goal.ID+"/streak", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var result domain.StreakResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 2, result.CurrentStreak)
		assert.Equal(t, 2, result.LongestStreak)
		require.NotNil(t, result.LastCompletedDate)
		assert.Equal(t, 9, result.LastCompletedDate.Day())
	})

	t.Run("Success: gap resets current but not longest", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")
		seedCompletion(t, env, goal, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC))

		req, _ := http.NewRequest("GET", "/api/v1/goals/"+goal.ID+"/streak", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var result domain.StreakResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 1, result.CurrentStreak)
		assert.Equal(t, 3, result.LongestStreak)
	})

	t.Run("Fail: 404 for another user's goal", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/goals/"+goal.ID+"/streak", nil)
		req.Header.Set("X-User-ID", "user-2")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetStats(t *testing.T) {
	t.Run("Success: daily goal over explicit window", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")
		seedCompletion(t, env, goal, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC))

		url := "/api/v1/goals/" + goal.ID + "/stats?from=2024-01-01&to=2024-01-04"
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var stats domain.CompletionStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		// Two completions on Jan 2 collapse to one counted day.
		assert.Equal(t, 2, stats.TotalCompletions)
		assert.Equal(t, 4, stats.ExpectedCompletions)
		assert.InDelta(t, 50.0, stats.CompletionRate, 0.01)
	})

	t.Run("Fail: 400 when to precedes from", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")

		url := "/api/v1/goals/" + goal.ID + "/stats?from=2024-01-04&to=2024-01-01"
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetFiniteProgress(t *testing.T) {
	seedFinite := func(t *testing.T, env testEnv, target int) *domain.Goal {
		t.Helper()
		goal, err := domain.NewFiniteGoal(
			"user-1", "Read 10 books", "", "", "", target,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		require.NoError(t, env.goalRepo.Create(context.Background(), goal))
		return goal
	}

	t.Run("Success: partial progress against deadline", func(t *testing.T) {
		env := setupRouter()
		goal := seedFinite(t, env, 10)
		seedCompletion(t, env, goal, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))
		seedCompletion(t, env, goal, time.Date(2024, 1, 5, 21, 0, 0, 0, time.UTC))

		req, _ := http.NewRequest("GET", "/api/v1/goals/"+goal.ID+"/progress", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var progress domain.FiniteProgress
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
		// Raw count: same-day repeats all count toward a finite target.
		assert.Equal(t, 3, progress.Completed)
		assert.Equal(t, 10, progress.Target)
		assert.Equal(t, 30, progress.Percentage)
		assert.Equal(t, 31, progress.TotalDays)
		assert.Equal(t, 10, progress.DaysElapsed)
		assert.Equal(t, 21, progress.DaysRemaining)
		assert.False(t, progress.IsComplete)
		assert.False(t, progress.IsOverdue)
	})

	t.Run("Fail: 400 for a recurring goal", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/goals/"+goal.ID+"/progress", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetGoalHeatmap(t *testing.T) {
	t.Run("Success: one cell per day, binary intensity", func(t *testing.T) {
		env := setupRouter()
		goal := seedGoal(t, env, "user-1")
		seedCompletion(t, env, goal, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))

		url := "/api/v1/goals/" + goal.ID + "/heatmap?from=2024-01-01&to=2024-01-03"
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Days []domain.HeatmapDay `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Days, 3)
		assert.Equal(t, "2024-01-01", resp.Days[0].Date)
		assert.Equal(t, 0, resp.Days[0].Intensity)
		assert.Equal(t, "2024-01-02", resp.Days[1].Date)
		assert.Equal(t, 4, resp.Days[1].Intensity)
		require.NotNil(t, resp.Days[1].IsBinaryComplete)
		assert.True(t, *resp.Days[1].IsBinaryComplete)
	})
}

func TestGetOverviewHeatmap(t *testing.T) {
	t.Run("Success: partial completion lands in middle bucket", func(t *testing.T) {
		env := setupRouter()
		goalA := seedGoal(t, env, "user-1")

		goalB, err := domain.NewRecurringGoal("user-1", "Stretch", "", "", "", domain.RecurrenceDaily, nil, 1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
		require.NoError(t, env.goalRepo.Create(context.Background(), goalB))

		// Only one of the two active goals done on Jan 2.
		seedCompletion(t, env, goalA, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))

		url := "/api/v1/heatmap?from=2024-01-02&to=2024-01-02"
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Days []domain.HeatmapDay `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Days, 1)
		assert.Equal(t, 1, resp.Days[0].CompletionCount)
		assert.Equal(t, 2, resp.Days[0].TotalUnits)
		assert.Equal(t, 2, resp.Days[0].Intensity)
		assert.Nil(t, resp.Days[0].IsBinaryComplete)
	})
}
