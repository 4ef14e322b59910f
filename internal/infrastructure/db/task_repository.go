package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxMutateAttempts = 3

var errVersionConflict = errors.New("task version conflict")

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Infow("task_repo_create_duplicate", "url", task.URL)
		} else {
			r.log.Errorw("task_repo_create_failed", "url", task.URL, "error", err)
		}
		return storageError(err)
	}
	r.log.Infow("task_repo_create_ok", "id", task.ID, "url", task.URL)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		}
		return nil, storageError(err)
	}
	return &task, nil
}

func (r *taskRepository) GetByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("normalized_url = ?", normalizedURL).First(&task).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("task_repo_get_by_url_failed", "url", normalizedURL, "error", err)
		}
		return nil, storageError(err)
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Model(&domain.Task{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var tasks []domain.Task
	err := query.
		Order("created_at asc").
		Order("id asc").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("task_repo_list_failed", "status", filter.Status, "error", err)
		return nil, storageError(err)
	}
	r.log.Debugw("task_repo_list_ok", "status", filter.Status, "count", len(tasks))
	return tasks, nil
}

func (r *taskRepository) Search(ctx context.Context, query string, status domain.TaskStatus) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).
		Where("LOWER(url) LIKE ? ESCAPE '\\'", containsPattern(query))
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var tasks []domain.Task
	if err := q.Order("created_at asc").Order("id asc").Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_search_failed", "query", query, "error", err)
		return nil, storageError(err)
	}
	return tasks, nil
}

func (r *taskRepository) Mutate(ctx context.Context, id uint, fn ports.TaskMutation) (*domain.Task, error) {
	for attempt := 1; attempt <= maxMutateAttempts; attempt++ {
		var updated domain.Task
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current domain.Task
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, id).Error; err != nil {
				return err
			}

			updates, err := fn(&current)
			if err != nil {
				return err
			}
			updates["version"] = current.Version + 1

			res := tx.Model(&domain.Task{}).
				Where("id = ? AND version = ?", id, current.Version).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
			return tx.First(&updated, id).Error
		})

		if errors.Is(err, errVersionConflict) {
			r.log.Warnw("task_repo_mutate_conflict", "id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			mapped := storageError(err)
			if errors.Is(mapped, domain.ErrStorageUnavailable) {
				r.log.Errorw("task_repo_mutate_failed", "id", id, "error", err)
			}
			return nil, mapped
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: task %d modified concurrently", domain.ErrInvalidState, id)
}

// Delete removes task id and its event trail in one transaction once guard
// accepts the locked row. Scholarships recorded by the task are kept.
func (r *taskRepository) Delete(ctx context.Context, id uint, guard func(task *domain.Task) error) (*domain.Task, error) {
	var deleted domain.Task
	var events int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&deleted, id).Error; err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&deleted); err != nil {
				return err
			}
		}

		res := tx.Where("task_id = ?", id).Delete(&domain.TaskEvent{})
		if res.Error != nil {
			return res.Error
		}
		events = res.RowsAffected

		res = tx.Where("version = ?", deleted.Version).Delete(&domain.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task %d modified concurrently", domain.ErrInvalidState, id)
		}
		return nil
	})
	if err != nil {
		mapped := storageError(err)
		if errors.Is(mapped, domain.ErrStorageUnavailable) {
			r.log.Errorw("task_repo_delete_failed", "id", id, "error", err)
		}
		return nil, mapped
	}
	r.log.Infow("task_repo_delete_ok", "id", id, "events_deleted", events)
	return &deleted, nil
}

func (r *taskRepository) DueIDs(ctx context.Context, now time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("status = ?", domain.TaskStatusPending).
		Where("next_run IS NULL OR next_run <= ?", now).
		Order("created_at asc").
		Order("id asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		r.log.Errorw("task_repo_due_failed", "error", err)
		return nil, storageError(err)
	}
	return ids, nil
}

func (r *taskRepository) StaleIDs(ctx context.Context, before time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("status = ? AND updated_at < ?", domain.TaskStatusInProgress, before).
		Order("updated_at asc").
		Pluck("id", &ids).Error
	if err != nil {
		r.log.Errorw("task_repo_stale_failed", "error", err)
		return nil, storageError(err)
	}
	return ids, nil
}

func (r *taskRepository) CountByStatus(ctx context.Context) (domain.TaskStatusCounts, error) {
	var rows []ports.GroupCount
	var counts domain.TaskStatusCounts
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("status AS bucket, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.log.Errorw("task_repo_count_failed", "error", err)
		return counts, storageError(err)
	}

	for _, row := range rows {
		switch domain.TaskStatus(row.Bucket) {
		case domain.TaskStatusPending:
			counts.Pending = row.Count
		case domain.TaskStatusInProgress:
			counts.InProgress = row.Count
		case domain.TaskStatusCompleted:
			counts.Completed = row.Count
		case domain.TaskStatusFailed:
			counts.Failed = row.Count
		}
	}
	return counts, nil
}

func (r *taskRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("status = ?", domain.TaskStatusCompleted).
		Where("end_time >= ? AND end_time <= ?", from, to).
		Count(&count).Error
	if err != nil {
		r.log.Errorw("task_repo_count_completed_failed", "error", err)
		return 0, storageError(err)
	}
	return count, nil
}

// RecentProgress lists running tasks first, then the most recently touched.
func (r *taskRepository) RecentProgress(ctx context.Context, limit int) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Order(fmt.Sprintf("CASE WHEN status = '%s' THEN 0 ELSE 1 END, updated_at desc, id desc", domain.TaskStatusInProgress)).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("task_repo_recent_progress_failed", "error", err)
		return nil, storageError(err)
	}
	return tasks, nil
}
