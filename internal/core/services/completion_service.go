package services

import (
	"context"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/workers"
)

type CompletionService struct {
	repo     domain.CompletionRepository
	goalRepo domain.GoalRepository
	worker   *workers.StreakWorker
}

func NewCompletionService(repo domain.CompletionRepository, goalRepo domain.GoalRepository, worker *workers.StreakWorker) *CompletionService {
	return &CompletionService{
		repo:     repo,
		goalRepo: goalRepo,
		worker:   worker,
	}
}

type LogCompletionInput struct {
	GoalID      string
	UserID      string
	CompletedAt time.Time
	Notes       string
}

type UpdateCompletionInput struct {
	ID          string
	UserID      string
	CompletedAt time.Time
	Notes       string
	Version     int
}

func (s *CompletionService) Log(ctx context.Context, input LogCompletionInput) (*domain.Completion, error) {
	completion := domain.NewCompletion(input.GoalID, input.UserID, input.CompletedAt)
	completion.Notes = input.Notes

	if err := completion.Validate(); err != nil {
		return nil, err
	}

	goal, err := s.goalRepo.GetByID(ctx, completion.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != completion.UserID {
		return nil, domain.ErrUnauthorized
	}
	if goal.ArchivedAt != nil {
		return nil, domain.ErrGoalArchived
	}

	if err := s.repo.Create(ctx, completion); err != nil {
		return nil, err
	}

	s.worker.Enqueue(completion.GoalID)

	return completion, nil
}

func (s *CompletionService) Update(ctx context.Context, input UpdateCompletionInput) (*domain.Completion, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	goal, err := s.goalRepo.GetByID(ctx, existing.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.ArchivedAt != nil {
		return nil, domain.ErrGoalArchived
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrCompletionConflict
	}

	if !input.CompletedAt.IsZero() {
		existing.CompletedAt = input.CompletedAt.UTC()
	}
	existing.Notes = input.Notes

	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.worker.Enqueue(existing.GoalID)

	return existing, nil
}

func (s *CompletionService) GetByID(ctx context.Context, id string, userID string) (*domain.Completion, error) {
	completion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if completion.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return completion, nil
}

func (s *CompletionService) ListByGoalID(ctx context.Context, goalID string, userID string, from, to time.Time) ([]*domain.Completion, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	return s.repo.ListByGoalIDWithRange(ctx, goalID, from, to)
}

func (s *CompletionService) Delete(ctx context.Context, id string, userID string) error {
	completion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if completion.UserID != userID {
		return domain.ErrUnauthorized
	}

	goalID := completion.GoalID

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(goalID)

	return nil
}

func (s *CompletionService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
