package domain

import "time"

type TaskEventType string

const (
	TaskEventCreated   TaskEventType = "created"
	TaskEventClaimed   TaskEventType = "claimed"
	TaskEventCompleted TaskEventType = "completed"
	TaskEventFailed    TaskEventType = "failed"
	TaskEventRetried   TaskEventType = "retried"
	TaskEventReclaimed TaskEventType = "reclaimed"
)

// TaskEvent records one lifecycle transition of a Task.
type TaskEvent struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time     `gorm:"index" json:"created_at"`
	TaskID     uint          `gorm:"not null;index" json:"task_id"`
	Type       TaskEventType `gorm:"size:20;not null" json:"type"`
	FromStatus TaskStatus    `gorm:"size:20" json:"from_status,omitempty"`
	ToStatus   TaskStatus    `gorm:"size:20;not null" json:"to_status"`
	Message    string        `gorm:"type:text" json:"message,omitempty"`
}

func (TaskEvent) TableName() string {
	return "task_events"
}
