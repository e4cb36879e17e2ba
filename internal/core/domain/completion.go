package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Completion struct {
	ID     string `json:"id" db:"id"`
	GoalID string `json:"goal_id" db:"goal_id"`
	UserID string `json:"user_id" db:"user_id"`

	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	Notes       string    `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewCompletion(goalID, userID string, completedAt time.Time) *Completion {
	now := time.Now().UTC()

	return &Completion{
		ID:          uuid.New().String(),
		GoalID:      goalID,
		UserID:      userID,
		CompletedAt: completedAt.UTC(),

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.GoalID) == "" {
		return errors.New("goal_id is required")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user_id is required")
	}
	if c.CompletedAt.IsZero() {
		return errors.New("completed_at is required")
	}
	return nil
}
