package db

import (
	"context"
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskEventRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskEventRepository(db *gorm.DB, log *logger.Logger) ports.TaskEventRepository {
	return &taskEventRepository{
		db:  db,
		log: log,
	}
}

func (r *taskEventRepository) Create(ctx context.Context, event *domain.TaskEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.log.Errorw("task_event_repo_create_failed", "task_id", event.TaskID, "type", event.Type, "error", err)
		return storageError(err)
	}
	r.log.Debugw("task_event_repo_create_ok", "id", event.ID, "task_id", event.TaskID, "type", event.Type)
	return nil
}

func (r *taskEventRepository) ListByTask(ctx context.Context, taskID uint, limit int) ([]domain.TaskEvent, error) {
	var events []domain.TaskEvent
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		r.log.Errorw("task_event_repo_list_failed", "task_id", taskID, "error", err)
		return nil, storageError(err)
	}
	return events, nil
}

// DeleteBefore prunes events created before cutoff and reports how many went.
func (r *taskEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.TaskEvent{})
	if res.Error != nil {
		r.log.Errorw("task_event_repo_cleanup_failed", "error", res.Error)
		return 0, storageError(res.Error)
	}
	r.log.Infow("task_event_repo_cleanup_ok", "deleted", res.RowsAffected)
	return res.RowsAffected, nil
}
