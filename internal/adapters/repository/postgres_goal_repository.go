package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fpellegrini/habitus/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresGoalRepository) scanRow(row scannable) (*domain.Goal, error) {
	var g domain.Goal
	var customJSON []byte

	err := row.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Color, &g.Icon, &g.SortOrder,
		&g.GoalType, &g.Recurrence, &customJSON, &g.TargetCount,
		&g.StartDate, &g.EndDate,
		&g.CurrentStreak, &g.LongestStreak, &g.ArchivedAt,
		&g.Version, &g.DeletedAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(customJSON) > 0 {
		if err := json.Unmarshal(customJSON, &g.Custom); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom time range: %w", err)
		}
	}

	return &g, nil
}

func marshalCustom(g *domain.Goal) ([]byte, error) {
	if g.Custom == nil {
		return nil, nil
	}
	return json.Marshal(g.Custom)
}

func (r *PostgresGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	customJSON, err := marshalCustom(g)
	if err != nil {
		return fmt.Errorf("failed to marshal custom time range: %w", err)
	}

	query := `
        INSERT INTO goals (
            id, user_id, title, description, color, icon, sort_order,
            goal_type, recurrence, custom_time_range, target_count,
            start_date, end_date,
            current_streak, longest_streak, archived_at,
            version, deleted_at, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10, $11,
            $12, $13,
            $14, $15, $16,
            1, NULL, $17, $18
        )`

	_, err = r.db.ExecContext(ctx, query,
		g.ID, g.UserID, g.Title, g.Description, g.Color, g.Icon, g.SortOrder,
		g.GoalType, g.Recurrence, customJSON, g.TargetCount,
		g.StartDate, g.EndDate,
		g.CurrentStreak, g.LongestStreak, g.ArchivedAt,
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	g.Version = 1
	return nil
}

func (r *PostgresGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	query := `SELECT * FROM goals WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	g, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return g, nil
}

func (r *PostgresGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	query := `
        SELECT * FROM goals
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal

	for rows.Next() {
		g, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

func (r *PostgresGoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	customJSON, err := marshalCustom(g)
	if err != nil {
		return err
	}

	query := `
        UPDATE goals SET
            title=$1, description=$2, color=$3, icon=$4, sort_order=$5,
            recurrence=$6, custom_time_range=$7, target_count=$8,
            end_date=$9, archived_at=$10,
            updated_at=NOW(), version = version + 1
        WHERE id=$11 AND version=$12 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		g.Title, g.Description, g.Color, g.Icon, g.SortOrder,
		g.Recurrence, customJSON, g.TargetCount,
		g.EndDate, g.ArchivedAt,
		g.ID, g.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	err = row.Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existsQuery := `SELECT count(*) FROM goals WHERE id = $1`
			var count int
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, g.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrGoalNotFound
			}
			return domain.ErrGoalConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	g.Version = newVersion
	g.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresGoalRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE goals
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

func (r *PostgresGoalRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	query := `
        SELECT * FROM goals
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal

	for rows.Next() {
		g, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("sync row scan error: %w", err)
		}
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

// UpdateStreaks is called by the streak worker; it deliberately does not bump
// the version so it never conflicts with user-driven edits.
func (r *PostgresGoalRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE goals
        SET current_streak = $1, longest_streak = $2, updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}
