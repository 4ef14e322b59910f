package services

import (
	"context"
	"errors"
	"strings"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
)

const (
	minSearchQueryLength = 3
	defaultPageLimit     = 100
	maxPageLimit         = 1000
	taskEventLimit       = 100
)

type TaskServiceConfig struct {
	Repository ports.TaskRepository
	Events     ports.TaskEventRepository
	Locks      *KeyLocker
	Logger     *logger.Logger
	Clock      Clock
}

type taskService struct {
	repo        ports.TaskRepository
	events      ports.TaskEventRepository
	locks       *KeyLocker
	logger      *logger.Logger
	now         Clock
	transitions transitionLog
}

func NewTaskService(cfg TaskServiceConfig) ports.TaskService {
	locks := cfg.Locks
	if locks == nil {
		locks = NewKeyLocker(true)
	}
	return &taskService{
		repo:        cfg.Repository,
		events:      cfg.Events,
		locks:       locks,
		logger:      cfg.Logger,
		now:         clockOrDefault(cfg.Clock),
		transitions: transitionLog{events: cfg.Events, log: cfg.Logger, now: cfg.Clock},
	}
}

func (s *taskService) CreateTask(ctx context.Context, rawURL string) (*domain.Task, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		s.logger.Infow("task_create_invalid_url", "url", rawURL)
		return nil, err
	}

	unlock := s.locks.Lock(urlKey(normalized))
	defer unlock()

	existing, err := s.repo.GetByNormalizedURL(ctx, normalized)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Infow("task_create_duplicate", "url", rawURL, "existing_id", existing.ID)
		return nil, ErrTaskDuplicateURL
	}

	now := s.now()
	task := &domain.Task{
		URL:           strings.TrimSpace(rawURL),
		NormalizedURL: normalized,
		Status:        domain.TaskStatusPending,
		NextRun:       &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		// Lost a race with another process on the unique index.
		if errors.Is(err, domain.ErrDuplicateURL) {
			return nil, ErrTaskDuplicateURL
		}
		return nil, err
	}

	s.transitions.record(ctx, task, domain.TaskEventCreated, "", "")
	s.logger.Infow("task_created", "id", task.ID, "url", task.URL)
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrTaskInvalidStatus
	}
	filter.Skip, filter.Limit = clampPage(filter.Skip, filter.Limit)
	return s.repo.List(ctx, filter)
}

func (s *taskService) ListFailed(ctx context.Context, skip, limit int) ([]domain.Task, error) {
	return s.ListTasks(ctx, ports.TaskFilter{Status: domain.TaskStatusFailed, Skip: skip, Limit: limit})
}

func (s *taskService) SearchTasks(ctx context.Context, query string, status domain.TaskStatus) ([]domain.Task, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLength {
		return nil, ErrTaskQueryTooShort
	}
	if status != "" && !status.Valid() {
		return nil, ErrTaskInvalidStatus
	}
	return s.repo.Search(ctx, query, status)
}

// RetryTask returns a failed task to the queue with its run state cleared.
// Lifetime success/fail counters are kept.
func (s *taskService) RetryTask(ctx context.Context, id uint) (*domain.Task, error) {
	unlock := s.locks.Lock(taskKey(id))
	defer unlock()

	var from domain.TaskStatus
	task, err := s.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		from = current.Status
		if current.Status != domain.TaskStatusFailed {
			return nil, ErrTaskNotRetryable
		}
		now := s.now()
		return map[string]interface{}{
			"status":              domain.TaskStatusPending,
			"error_message":       nil,
			"start_time":          nil,
			"end_time":            nil,
			"processing_duration": nil,
			"total_links":         0,
			"processed_links":     0,
			"scholarships_found":  0,
			"next_run":            now,
			"updated_at":          now,
		}, nil
	})
	if err != nil {
		s.logger.Infow("task_retry_rejected", "id", id, "status", from, "error", err)
		return nil, notFoundAs(err, ErrTaskNotFound)
	}

	s.transitions.record(ctx, task, domain.TaskEventRetried, from, "")
	s.logger.Infow("task_retried", "id", id)
	return task, nil
}

// DeleteTask removes a task that is not running, along with its event trail.
// Scholarships it recorded are kept and still reference its id.
func (s *taskService) DeleteTask(ctx context.Context, id uint) (*domain.Task, error) {
	unlock := s.locks.Lock(taskKey(id))
	defer unlock()

	task, err := s.repo.Delete(ctx, id, func(current *domain.Task) error {
		if current.Status == domain.TaskStatusInProgress {
			return ErrTaskRunning
		}
		return nil
	})
	if err != nil {
		s.logger.Infow("task_delete_rejected", "id", id, "error", err)
		return nil, notFoundAs(err, ErrTaskNotFound)
	}

	metrics.RecordTransition("deleted", string(task.Status))
	s.logger.Infow("task_deleted", "id", id, "url", task.URL)
	return task, nil
}

func (s *taskService) ListEvents(ctx context.Context, id uint) ([]domain.TaskEvent, error) {
	if _, err := s.GetTask(ctx, id); err != nil {
		return nil, err
	}
	if s.events == nil {
		return []domain.TaskEvent{}, nil
	}
	return s.events.ListByTask(ctx, id, taskEventLimit)
}

// notFoundAs swaps a bare storage not-found for the caller's sentinel.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, domain.ErrNotFound) && !errors.Is(err, sentinel) {
		return sentinel
	}
	return err
}

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}
