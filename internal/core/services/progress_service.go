package services

import (
	"context"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/progress"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
)

// ProgressService feeds stored goals and completions through the pure
// progress engine. All date interpretation happens in the engine; this layer
// only loads data, checks ownership and supplies "now" via the clock.
type ProgressService struct {
	goalRepo       domain.GoalRepository
	completionRepo domain.CompletionRepository
	clock          timeutil.Clock
}

func NewProgressService(goalRepo domain.GoalRepository, completionRepo domain.CompletionRepository, clock timeutil.Clock) *ProgressService {
	return &ProgressService{
		goalRepo:       goalRepo,
		completionRepo: completionRepo,
		clock:          clock,
	}
}

func (s *ProgressService) ownedGoal(ctx context.Context, goalID, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrGoalNotFound
	}
	return goal, nil
}

func (s *ProgressService) GetStreak(ctx context.Context, goalID, userID string) (*domain.StreakResult, error) {
	goal, err := s.ownedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByGoalID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	result := progress.CalculateStreak(goal, completions, s.clock.Now())
	return &result, nil
}

func (s *ProgressService) GetCompletionStats(ctx context.Context, goalID, userID string, windowStart, windowEnd time.Time) (*domain.CompletionStats, error) {
	goal, err := s.ownedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByGoalIDWithRange(ctx, goalID,
		timeutil.StartOfDay(windowStart), timeutil.EndOfDay(windowEnd))
	if err != nil {
		return nil, err
	}

	stats := progress.CalculateCompletionStats(goal, completions, windowStart, windowEnd)
	return &stats, nil
}

func (s *ProgressService) GetFiniteProgress(ctx context.Context, goalID, userID string) (*domain.FiniteProgress, error) {
	goal, err := s.ownedGoal(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	if goal.GoalType != domain.GoalTypeFinite {
		return nil, domain.ErrInvalidGoalType
	}

	completions, err := s.completionRepo.ListByGoalID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	result := progress.CalculateFiniteProgress(goal, completions, s.clock.Now())
	return &result, nil
}

func (s *ProgressService) GetGoalHeatmap(ctx context.Context, goalID, userID string, rangeStart, rangeEnd time.Time) ([]domain.HeatmapDay, error) {
	if _, err := s.ownedGoal(ctx, goalID, userID); err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByGoalIDWithRange(ctx, goalID,
		timeutil.StartOfDay(rangeStart), timeutil.EndOfDay(rangeEnd))
	if err != nil {
		return nil, err
	}

	return progress.SingleGoalHeatmap(completions, rangeStart, rangeEnd), nil
}

func (s *ProgressService) GetOverviewHeatmap(ctx context.Context, userID string, rangeStart, rangeEnd time.Time) ([]domain.HeatmapDay, error) {
	goals, err := s.goalRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.completionRepo.ListByUserIDAndDateRange(ctx, userID,
		timeutil.StartOfDay(rangeStart), timeutil.EndOfDay(rangeEnd))
	if err != nil {
		return nil, err
	}

	completions := make([]*domain.Completion, 0, len(entries))
	for i := range entries {
		completions = append(completions, &entries[i])
	}

	return progress.MultiGoalHeatmap(goals, completions, rangeStart, rangeEnd), nil
}
