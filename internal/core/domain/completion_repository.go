package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCompletionNotFound = errors.New("completion not found")
	ErrCompletionConflict = errors.New("completion version conflict")
)

type CompletionRepository interface {
	// Create persists a new completion log entry.
	Create(ctx context.Context, completion *Completion) error

	// Update modifies an existing entry. Implementations must handle
	// optimistic locking (version check) to prevent data races.
	Update(ctx context.Context, completion *Completion) error

	// Delete performs a soft delete on the entry. It requires userID to
	// ensure the user actually owns the entry being deleted.
	Delete(ctx context.Context, id string, userID string) error

	// GetByID retrieves a single active (non-deleted) entry by its ID.
	GetByID(ctx context.Context, id string) (*Completion, error)

	// ListByGoalID retrieves every active completion of a goal, in no
	// guaranteed order. The progress engine sorts and dedupes internally.
	ListByGoalID(ctx context.Context, goalID string) ([]*Completion, error)

	// ListByGoalIDWithRange retrieves completions of a goal inside a date
	// range, newest first, for calendar and chart views.
	ListByGoalIDWithRange(ctx context.Context, goalID string, from, to time.Time) ([]*Completion, error)

	// ListByUserIDAndDateRange retrieves all completions of a user across
	// goals inside a date range, for multi-goal aggregation.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]Completion, error)

	// GetChanges returns all changes (creations, updates, soft deletes)
	// after the 'since' instant, for offline-first synchronization.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Completion, error)
}
