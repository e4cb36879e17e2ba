package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrGoalConflict = errors.New("goal version conflict")
)

type GoalRepository interface {
	// Create persists a new goal definition in the storage.
	Create(ctx context.Context, goal *Goal) error

	// GetByID retrieves a goal by its unique identifier.
	GetByID(ctx context.Context, id string) (*Goal, error)

	// ListByUserID retrieves all goals belonging to a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Goal, error)

	// Update modifies the state of an existing goal. Implementations must
	// enforce optimistic locking on the version column.
	Update(ctx context.Context, goal *Goal) error

	// Delete performs a soft delete on the goal.
	Delete(ctx context.Context, id string) error

	// GetChanges returns only the deltas occurring after a specific instant,
	// for offline-first synchronization.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Goal, error)

	// UpdateStreaks writes the denormalized streak counters without bumping
	// the user-facing version.
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}
