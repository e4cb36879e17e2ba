package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGoalTitleEmpty        = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong      = errors.New("goal title is too long (max 100 chars)")
	ErrGoalDescTooLong       = errors.New("goal description is too long (max 500 chars)")
	ErrGoalInvalidUserID     = errors.New("invalid user id")
	ErrInvalidColor          = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidGoalType       = errors.New("invalid goal type (must be recurring or finite)")
	ErrInvalidRecurrence     = errors.New("invalid recurrence (must be daily, weekly, monthly, or custom)")
	ErrInvalidTargetCount    = errors.New("target count must be positive")
	ErrInvalidCustomRange    = errors.New("invalid custom time range (value must be positive, unit days|weeks|months)")
	ErrFiniteGoalWithoutEnd  = errors.New("finite goal requires an end date")
	ErrEndDateBeforeStart    = errors.New("end date cannot be before start date")
	ErrGoalArchived          = errors.New("cannot update an archived goal")
	ErrUnauthorized          = errors.New("operation not allowed for this user")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	GoalTypeRecurring = "recurring"
	GoalTypeFinite    = "finite"

	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceCustom  = "custom"

	CustomUnitDays   = "days"
	CustomUnitWeeks  = "weeks"
	CustomUnitMonths = "months"

	DefaultIcon = "default_icon"
	MaxTitleLen = 100
	MaxDescLen  = 500
)

// CustomTimeRange describes the period of a custom-recurrence goal:
// Value units of Unit per period (e.g. every 3 days, every 2 weeks).
type CustomTimeRange struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

func (r CustomTimeRange) validate() error {
	if r.Value <= 0 {
		return ErrInvalidCustomRange
	}
	switch r.Unit {
	case CustomUnitDays, CustomUnitWeeks, CustomUnitMonths:
		return nil
	default:
		return ErrInvalidCustomRange
	}
}

// Goal is a tagged union on GoalType. Recurring goals carry a recurrence rule
// and reset their target every period; finite goals have a fixed total target
// and a deadline (EndDate is mandatory for them).
type Goal struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`

	GoalType    string           `json:"goal_type"`
	Recurrence  string           `json:"recurrence,omitempty"`
	Custom      *CustomTimeRange `json:"custom_time_range,omitempty"`
	TargetCount int              `json:"target_count"`

	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Denormalized streak counters maintained by the streak worker.
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func validateShared(userID, title, desc, color string, target int) error {
	if userID == "" {
		return ErrGoalInvalidUserID
	}
	if strings.TrimSpace(title) == "" {
		return ErrGoalTitleEmpty
	}
	if len(strings.TrimSpace(title)) > MaxTitleLen {
		return ErrGoalTitleTooLong
	}
	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return ErrGoalDescTooLong
	}
	if color != "" && !colorRegex.MatchString(color) {
		return ErrInvalidColor
	}
	if target <= 0 {
		return ErrInvalidTargetCount
	}
	return nil
}

func newGoal(userID, title, desc, color, icon string, target int, startDate time.Time) *Goal {
	if icon == "" {
		icon = DefaultIcon
	}
	now := time.Now().UTC()
	if startDate.IsZero() {
		startDate = now
	}

	return &Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(desc),
		Color:       color,
		Icon:        icon,
		TargetCount: target,
		StartDate:   startDate,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewRecurringGoal creates a goal whose target resets every period.
// The custom range is required only for RecurrenceCustom; endDate is an
// optional bound after which the goal stops accruing expectations.
func NewRecurringGoal(userID, title, desc, color, icon, recurrence string, custom *CustomTimeRange, target int, startDate time.Time, endDate *time.Time) (*Goal, error) {
	if err := validateShared(userID, title, desc, color, target); err != nil {
		return nil, err
	}

	switch recurrence {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
	case RecurrenceCustom:
		if custom != nil {
			if err := custom.validate(); err != nil {
				return nil, err
			}
		}
	default:
		return nil, ErrInvalidRecurrence
	}

	if endDate != nil && !startDate.IsZero() && endDate.Before(startDate) {
		return nil, ErrEndDateBeforeStart
	}

	g := newGoal(userID, title, desc, color, icon, target, startDate)
	g.GoalType = GoalTypeRecurring
	g.Recurrence = recurrence
	g.Custom = custom
	g.EndDate = endDate
	return g, nil
}

// NewFiniteGoal creates a goal with a fixed total target and a deadline.
func NewFiniteGoal(userID, title, desc, color, icon string, target int, startDate time.Time, endDate time.Time) (*Goal, error) {
	if err := validateShared(userID, title, desc, color, target); err != nil {
		return nil, err
	}
	if endDate.IsZero() {
		return nil, ErrFiniteGoalWithoutEnd
	}
	if !startDate.IsZero() && endDate.Before(startDate) {
		return nil, ErrEndDateBeforeStart
	}

	g := newGoal(userID, title, desc, color, icon, target, startDate)
	g.GoalType = GoalTypeFinite
	g.EndDate = &endDate
	return g, nil
}

// Update rewrites the editable fields. The goal type is fixed at creation;
// switching between recurring and finite is not supported.
func (g *Goal) Update(title, desc, color, icon, recurrence string, custom *CustomTimeRange, target int, endDate *time.Time) error {
	if g.ArchivedAt != nil {
		return ErrGoalArchived
	}
	if err := validateShared(g.UserID, title, desc, color, target); err != nil {
		return err
	}

	switch g.GoalType {
	case GoalTypeRecurring:
		switch recurrence {
		case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
			custom = nil
		case RecurrenceCustom:
			if custom != nil {
				if err := custom.validate(); err != nil {
					return err
				}
			}
		default:
			return ErrInvalidRecurrence
		}
		g.Recurrence = recurrence
		g.Custom = custom
	case GoalTypeFinite:
		if endDate == nil {
			return ErrFiniteGoalWithoutEnd
		}
	default:
		return ErrInvalidGoalType
	}

	if endDate != nil && endDate.Before(g.StartDate) {
		return ErrEndDateBeforeStart
	}

	if icon == "" {
		icon = DefaultIcon
	}

	g.Title = strings.TrimSpace(title)
	g.Description = strings.TrimSpace(desc)
	g.Color = color
	g.Icon = icon
	g.TargetCount = target
	g.EndDate = endDate
	g.UpdatedAt = time.Now().UTC()

	return nil
}

func (g *Goal) ChangePosition(newOrder int) error {
	if g.ArchivedAt != nil {
		return ErrGoalArchived
	}
	g.SortOrder = newOrder
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (g *Goal) Archive() {
	if g.ArchivedAt != nil {
		return
	}
	now := time.Now().UTC()
	g.ArchivedAt = &now
	g.UpdatedAt = now
}

func (g *Goal) Restore() {
	if g.ArchivedAt == nil {
		return
	}
	g.ArchivedAt = nil
	g.UpdatedAt = time.Now().UTC()
}

func (g *Goal) UpdateStreak(current, longest int) {
	g.CurrentStreak = current
	g.LongestStreak = longest
	g.UpdatedAt = time.Now().UTC()
}
