package services

import (
	"context"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
)

// transitionLog writes the task event trail and transition metrics. Event
// writes are best effort: the task row is already committed.
type transitionLog struct {
	events ports.TaskEventRepository
	log    *logger.Logger
	now    Clock
}

func (t transitionLog) record(ctx context.Context, task *domain.Task, kind domain.TaskEventType, from domain.TaskStatus, message string) {
	metrics.RecordTransition(string(kind), string(task.Status))
	if t.events == nil {
		return
	}
	event := &domain.TaskEvent{
		CreatedAt:  clockOrDefault(t.now)(),
		TaskID:     task.ID,
		Type:       kind,
		FromStatus: from,
		ToStatus:   task.Status,
		Message:    message,
	}
	if err := t.events.Create(ctx, event); err != nil {
		t.log.Warnw("task_event_record_failed", "task_id", task.ID, "type", kind, "error", err)
	}
}
