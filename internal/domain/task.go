package domain

import "time"

// Task is one unit of scraping work targeting a single source URL. Run
// progress lives on the task row itself so a single-row update is never torn.
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
	// Version is bumped by every lifecycle mutation and guards concurrent writers.
	Version int `gorm:"not null;default:0" json:"-"`

	URL           string     `gorm:"size:500;not null" json:"url"`
	NormalizedURL string     `gorm:"size:500;uniqueIndex;not null" json:"-"`
	Status        TaskStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	TotalLinks        int `gorm:"not null;default:0" json:"total_links"`
	ProcessedLinks    int `gorm:"not null;default:0" json:"processed_links"`
	ScholarshipsFound int `gorm:"not null;default:0" json:"scholarships_found"`
	SuccessCount      int `gorm:"not null;default:0" json:"success_count"`
	FailCount         int `gorm:"not null;default:0" json:"fail_count"`

	StartTime          *time.Time `json:"start_time,omitempty"`
	EndTime            *time.Time `gorm:"index" json:"end_time,omitempty"`
	LastRun            *time.Time `json:"last_run,omitempty"`
	NextRun            *time.Time `gorm:"index" json:"next_run,omitempty"`
	ErrorMessage       *string    `gorm:"type:text" json:"error_message,omitempty"`
	ProcessingDuration *float64   `json:"processing_duration,omitempty"` // seconds
}

func (Task) TableName() string {
	return "scraping_tasks"
}

// ProgressPercentage is processed/total*100, or 0 while the total is unknown.
func (t *Task) ProgressPercentage() float64 {
	if t.TotalLinks <= 0 {
		return 0
	}
	return float64(t.ProcessedLinks) / float64(t.TotalLinks) * 100
}

// Elapsed returns how long the current or last run took. A running task is
// measured against now; a task that never started has no duration.
func (t *Task) Elapsed(now time.Time) (time.Duration, bool) {
	if t.StartTime == nil {
		return 0, false
	}
	end := now
	if t.EndTime != nil {
		end = *t.EndTime
	}
	if end.Before(*t.StartTime) {
		return 0, true
	}
	return end.Sub(*t.StartTime), true
}
