package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
)

type GoalService struct {
	repo domain.GoalRepository
}

func NewGoalService(repo domain.GoalRepository) *GoalService {
	return &GoalService{
		repo: repo,
	}
}

type CreateGoalInput struct {
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	GoalType    string
	Recurrence  string
	Custom      *domain.CustomTimeRange
	TargetCount int
	StartDate   time.Time
	EndDate     *time.Time
}

type UpdateGoalInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Recurrence  string
	Custom      *domain.CustomTimeRange
	TargetCount int
	EndDate     *time.Time
	Version     int
}

func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	var goal *domain.Goal
	var err error

	if input.TargetCount == 0 {
		input.TargetCount = 1
	}

	switch input.GoalType {
	case domain.GoalTypeFinite:
		if input.EndDate == nil {
			return nil, domain.ErrFiniteGoalWithoutEnd
		}
		goal, err = domain.NewFiniteGoal(
			input.UserID, input.Title, input.Description, input.Color, input.Icon,
			input.TargetCount, input.StartDate, *input.EndDate,
		)
	case domain.GoalTypeRecurring, "":
		recurrence := input.Recurrence
		if recurrence == "" {
			recurrence = domain.RecurrenceDaily
		}
		goal, err = domain.NewRecurringGoal(
			input.UserID, input.Title, input.Description, input.Color, input.Icon,
			recurrence, input.Custom, input.TargetCount, input.StartDate, input.EndDate,
		)
	default:
		return nil, domain.ErrInvalidGoalType
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) GetByID(ctx context.Context, id string, userID string) (*domain.Goal, error) {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrGoalNotFound
	}
	return goal, nil
}

func (s *GoalService) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *GoalService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Goal, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *GoalService) Update(ctx context.Context, input UpdateGoalInput) error {
	goal, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}

	if goal.UserID != input.UserID {
		return domain.ErrGoalNotFound
	}

	if input.Version > 0 && goal.Version != input.Version {
		return fmt.Errorf("%w: client v%d vs server v%d", domain.ErrGoalConflict, input.Version, goal.Version)
	}

	title := mergeString(input.Title, goal.Title)
	desc := mergeString(input.Description, goal.Description)
	color := mergeString(input.Color, goal.Color)
	icon := mergeString(input.Icon, goal.Icon)
	recurrence := mergeString(input.Recurrence, goal.Recurrence)

	custom := goal.Custom
	if input.Custom != nil {
		custom = input.Custom
	}

	target := goal.TargetCount
	if input.TargetCount > 0 {
		target = input.TargetCount
	}

	endDate := goal.EndDate
	if input.EndDate != nil {
		endDate = input.EndDate
	}

	if err := goal.Update(title, desc, color, icon, recurrence, custom, target, endDate); err != nil {
		return err
	}

	return s.repo.Update(ctx, goal)
}

func (s *GoalService) Archive(ctx context.Context, id string, userID string) error {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return domain.ErrGoalNotFound
	}

	goal.Archive()
	return s.repo.Update(ctx, goal)
}

func (s *GoalService) Restore(ctx context.Context, id string, userID string) error {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return domain.ErrGoalNotFound
	}

	goal.Restore()
	return s.repo.Update(ctx, goal)
}

func (s *GoalService) Delete(ctx context.Context, id string, userID string) error {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if goal.UserID != userID {
		return domain.ErrGoalNotFound
	}

	return s.repo.Delete(ctx, id)
}
