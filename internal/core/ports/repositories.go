package ports

import (
	"context"
	"time"

	"github.com/striveopps/backend/internal/domain"
)

type TaskFilter struct {
	Status domain.TaskStatus
	Skip   int
	Limit  int
}

// TaskMutation inspects the locked current row and returns the column updates
// to apply, or an error to abort without writing.
type TaskMutation func(task *domain.Task) (map[string]interface{}, error)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uint) (*domain.Task, error)
	GetByNormalizedURL(ctx context.Context, normalizedURL string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Search(ctx context.Context, query string, status domain.TaskStatus) ([]domain.Task, error)
	// Mutate applies fn to task id inside one transaction, guarded by the row
	// version so concurrent writers never interleave.
	Mutate(ctx context.Context, id uint, fn TaskMutation) (*domain.Task, error)
	// Delete removes the task and its events after guard approves the locked
	// row; scholarships it recorded stay.
	Delete(ctx context.Context, id uint, guard func(task *domain.Task) error) (*domain.Task, error)
	DueIDs(ctx context.Context, now time.Time, limit int) ([]uint, error)
	StaleIDs(ctx context.Context, before time.Time) ([]uint, error)
	CountByStatus(ctx context.Context) (domain.TaskStatusCounts, error)
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error)
	RecentProgress(ctx context.Context, limit int) ([]domain.Task, error)
}

type ScholarshipFilter struct {
	FieldOfStudy  string
	LevelOfStudy  string
	MinConfidence float64
	DeadlineAfter *time.Time
	MinAmount     *float64
	MaxAmount     *float64
	SourceURL     string
	TaskID        *uint
	Skip          int
	Limit         int
}

type GroupCount struct {
	Bucket string
	Count  int64
}

type ScholarshipRepository interface {
	Create(ctx context.Context, scholarship *domain.Scholarship) error
	GetByID(ctx context.Context, id uint) (*domain.Scholarship, error)
	List(ctx context.Context, filter ScholarshipFilter) ([]domain.Scholarship, error)
	CountAndAverage(ctx context.Context) (count int64, average float64, err error)
	CountBy(ctx context.Context, column string) ([]GroupCount, error)
	Recent(ctx context.Context, limit int) ([]domain.Scholarship, error)
	UpdatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	AmountRanges(ctx context.Context) ([]GroupCount, error)
	DeadlineDistribution(ctx context.Context, now, monthEnd, quarterEnd time.Time) ([]GroupCount, error)
	ExportRange(ctx context.Context, start, end *time.Time) ([]domain.Scholarship, error)
}

type TaskEventRepository interface {
	Create(ctx context.Context, event *domain.TaskEvent) error
	ListByTask(ctx context.Context, taskID uint, limit int) ([]domain.TaskEvent, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
