package workers

import (
	"context"
	"log"
	"time"

	"github.com/fpellegrini/habitus/internal/core/domain"
	"github.com/fpellegrini/habitus/internal/core/progress"
	"github.com/fpellegrini/habitus/internal/core/timeutil"
)

type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type CompletionRepository interface {
	ListByGoalID(ctx context.Context, goalID string) ([]*domain.Completion, error)
}

type StreakJob struct {
	GoalID string
}

// StreakWorker keeps the denormalized streak counters on goals in sync with
// their completion log. Completion writes enqueue a recompute job; the worker
// runs the progress engine and persists the counters only when they changed.
type StreakWorker struct {
	goalRepo       GoalRepository
	completionRepo CompletionRepository
	clock          timeutil.Clock
	jobs           chan StreakJob
}

func NewStreakWorker(goalRepo GoalRepository, completionRepo CompletionRepository, clock timeutil.Clock) *StreakWorker {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &StreakWorker{
		goalRepo:       goalRepo,
		completionRepo: completionRepo,
		clock:          clock,
		jobs:           make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(goalID string) {
	select {
	case w.jobs <- StreakJob{GoalID: goalID}:
	default:
		log.Printf("Streak worker queue full! Dropping job for goal %s", goalID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	goal, err := w.goalRepo.GetByID(ctx, job.GoalID)
	if err != nil {
		log.Printf("Worker error fetching goal %s: %v", job.GoalID, err)
		return
	}

	completions, err := w.completionRepo.ListByGoalID(ctx, job.GoalID)
	if err != nil {
		log.Printf("Worker error fetching completions for %s: %v", job.GoalID, err)
		return
	}

	result := progress.CalculateStreak(goal, completions, w.clock.Now())

	if goal.CurrentStreak == result.CurrentStreak && goal.LongestStreak == result.LongestStreak {
		return
	}

	if err := w.goalRepo.UpdateStreaks(ctx, goal.ID, result.CurrentStreak, result.LongestStreak); err != nil {
		log.Printf("Worker failed to update streaks for %s: %v", goal.ID, err)
		return
	}

	log.Printf("Streaks updated for %q: current=%d, longest=%d", goal.Title, result.CurrentStreak, result.LongestStreak)
}

// ProcessOnce drains at most one pending job synchronously. Used by tests to
// avoid sleeping on the background goroutine.
func (w *StreakWorker) ProcessOnce(ctx context.Context) bool {
	select {
	case job := <-w.jobs:
		w.processJob(ctx, job)
		return true
	case <-time.After(10 * time.Millisecond):
		return false
	}
}
