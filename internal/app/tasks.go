package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldedge/rewards/internal/adapters/session"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/pkg/logger"
	"github.com/goldedge/rewards/pkg/metrics"
)

// TaskCompletion is the outcome of CompleteTask.
type TaskCompletion struct {
	Task      tasks.Task `json:"task"`
	Reward    float64    `json:"reward"`
	Balance   float64    `json:"balance"`
	Completed int        `json:"completed"`
	Remaining int        `json:"remaining"`
}

// current makes sure u holds today's batch for its tier and reports whether
// a new one was generated.
func (s *Service) current(u *session.Session, now time.Time) (bool, error) {
	day := tasks.DayKey(now)
	if u.Batch != nil && u.Batch.Day == day && u.Batch.Tier == u.Tier {
		return false, nil
	}
	cfg, err := tier.Lookup(u.Tier, s.policy)
	if err != nil {
		return false, err
	}
	batch, err := s.generator.GenerateFrom(cfg, now, s.banks)
	if err != nil {
		return false, fmt.Errorf("generate tasks: %w", err)
	}
	u.Batch = &batch
	metrics.RecordTasksGenerated(cfg.Label(), len(batch.Tasks))
	return true, nil
}

// DailyTasks returns today's batch for the user, generating it on the first
// call of the day or after a tier change. Completion state is kept until
// the day rolls over.
func (s *Service) DailyTasks(ctx context.Context, userID string) (tasks.Batch, error) {
	var fresh bool
	sess, err := s.update(ctx, userID, func(u *session.Session) error {
		if err := activated(u); err != nil {
			return err
		}
		var err error
		fresh, err = s.current(u, s.now())
		return err
	})
	if err != nil {
		return tasks.Batch{}, err
	}
	if fresh {
		metrics.RecordTaskBatch("fresh")
		s.logger.Debug(ctx, "daily batch generated",
			logger.String("userID", userID),
			logger.String("batchID", sess.Batch.ID),
			logger.Int("tasks", len(sess.Batch.Tasks)),
		)
	} else {
		metrics.RecordTaskBatch("reuse")
	}
	return sess.Batch.Clone(), nil
}

// CompleteTask marks taskID of today's batch done and credits its reward.
// seconds is the time the user spent; zero or less records the task's
// nominal duration.
func (s *Service) CompleteTask(ctx context.Context, userID, taskID string, seconds int) (TaskCompletion, error) {
	var done TaskCompletion
	_, err := s.update(ctx, userID, func(u *session.Session) error {
		if err := activated(u); err != nil {
			return err
		}
		now := s.now()
		if _, err := s.current(u, now); err != nil {
			return err
		}
		task, err := u.Batch.Complete(taskID)
		if err != nil {
			return err
		}
		if seconds <= 0 {
			seconds = task.DurationSeconds
		}
		u.CompletedTasks = append(u.CompletedTasks, model.TaskRecord{
			TaskID:         task.ID,
			Category:       string(task.Kind),
			CompletionTime: seconds,
			Reward:         task.Reward,
			CompletedAt:    now,
		})
		u.Credit(tasks.DayKey(now), task.Reward)

		completed := u.Batch.CompletedCount()
		done = TaskCompletion{
			Task:      task,
			Reward:    task.Reward,
			Balance:   u.Balance,
			Completed: completed,
			Remaining: len(u.Batch.Tasks) - completed,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, tasks.ErrTaskCompleted) || errors.Is(err, tasks.ErrTaskNotFound) {
			s.logger.Debug(ctx, "task completion refused", logger.String("userID", userID), logger.Error(err))
		}
		return TaskCompletion{}, err
	}
	metrics.RecordTaskCompleted()
	s.publish(ctx, userID, SourceTask, done.Reward)
	return done, nil
}

// SearchTasks fuzzy-matches query against today's task titles and
// descriptions.
func (s *Service) SearchTasks(ctx context.Context, userID, query string) ([]tasks.Task, error) {
	batch, err := s.DailyTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tasks.Search(batch.Tasks, query), nil
}
