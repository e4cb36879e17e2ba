package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
)

// In-memory repositories for tests and local development. They implement the
// same soft-delete and ownership semantics as the postgres adapters.

type InMemoryGoalRepository struct {
	store map[string]*domain.Goal

	mu sync.RWMutex
}

func NewInMemoryGoalRepository() *InMemoryGoalRepository {
	return &InMemoryGoalRepository{
		store: make(map[string]*domain.Goal),
	}
}

func (r *InMemoryGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[goal.ID] = goal
	return nil
}

func (r *InMemoryGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goal, ok := r.store[id]
	if !ok || goal.DeletedAt != nil {
		return nil, domain.ErrGoalNotFound
	}
	return goal, nil
}

func (r *InMemoryGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var goals []*domain.Goal
	for _, g := range r.store {
		if g.UserID == userID && g.DeletedAt == nil {
			goals = append(goals, g)
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].SortOrder < goals[j].SortOrder
	})

	return goals, nil
}

func (r *InMemoryGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[goal.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}

	goal.Version = existing.Version + 1
	r.store[goal.ID] = goal
	return nil
}

func (r *InMemoryGoalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	goal, ok := r.store[id]
	if !ok || goal.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}

	now := time.Now().UTC()
	goal.DeletedAt = &now
	goal.UpdatedAt = now
	return nil
}

func (r *InMemoryGoalRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var goals []*domain.Goal
	for _, g := range r.store {
		if g.UserID == userID && g.UpdatedAt.After(since) {
			goals = append(goals, g)
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].UpdatedAt.Before(goals[j].UpdatedAt)
	})

	return goals, nil
}

func (r *InMemoryGoalRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	goal, ok := r.store[id]
	if !ok || goal.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}

	goal.CurrentStreak = current
	goal.LongestStreak = longest
	goal.UpdatedAt = time.Now().UTC()
	return nil
}

type InMemoryCompletionRepository struct {
	store map[string]*domain.Completion

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		store: make(map[string]*domain.Completion),
	}
}

func (r *InMemoryCompletionRepository) Create(ctx context.Context, completion *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[completion.ID] = completion
	return nil
}

func (r *InMemoryCompletionRepository) GetByID(ctx context.Context, id string) (*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	completion, ok := r.store[id]
	if !ok || completion.DeletedAt != nil {
		return nil, domain.ErrCompletionNotFound
	}
	return completion, nil
}

func (r *InMemoryCompletionRepository) Update(ctx context.Context, completion *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[completion.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrCompletionNotFound
	}

	r.store[completion.ID] = completion
	return nil
}

func (r *InMemoryCompletionRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	completion, ok := r.store[id]
	if !ok || completion.DeletedAt != nil || completion.UserID != userID {
		return domain.ErrCompletionNotFound
	}

	now := time.Now().UTC()
	completion.DeletedAt = &now
	completion.UpdatedAt = now
	return nil
}

func (r *InMemoryCompletionRepository) ListByGoalID(ctx context.Context, goalID string) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []*domain.Completion
	for _, c := range r.store {
		if c.GoalID == goalID && c.DeletedAt == nil {
			completions = append(completions, c)
		}
	}
	return completions, nil
}

func (r *InMemoryCompletionRepository) ListByGoalIDWithRange(ctx context.Context, goalID string, from, to time.Time) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []*domain.Completion
	for _, c := range r.store {
		if c.GoalID == goalID && c.DeletedAt == nil &&
			!c.CompletedAt.Before(from) && !c.CompletedAt.After(to) {
			completions = append(completions, c)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].CompletedAt.After(completions[j].CompletedAt)
	})

	return completions, nil
}

func (r *InMemoryCompletionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []domain.Completion
	for _, c := range r.store {
		if c.UserID == userID && c.DeletedAt == nil &&
			!c.CompletedAt.Before(from) && !c.CompletedAt.After(to) {
			completions = append(completions, *c)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].CompletedAt.Before(completions[j].CompletedAt)
	})

	return completions, nil
}

func (r *InMemoryCompletionRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var completions []*domain.Completion
	for _, c := range r.store {
		if c.UserID == userID && c.UpdatedAt.After(since) {
			completions = append(completions, c)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		return completions[i].UpdatedAt.Before(completions[j].UpdatedAt)
	})

	return completions, nil
}
