package ports

import (
	"context"
	"io"
	"time"

	"github.com/striveopps/backend/internal/domain"
)

// TaskService is the task store contract used by the dashboard.
type TaskService interface {
	CreateTask(ctx context.Context, url string) (*domain.Task, error)
	GetTask(ctx context.Context, id uint) (*domain.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	ListFailed(ctx context.Context, skip, limit int) ([]domain.Task, error)
	SearchTasks(ctx context.Context, query string, status domain.TaskStatus) ([]domain.Task, error)
	RetryTask(ctx context.Context, id uint) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uint) (*domain.Task, error)
	ListEvents(ctx context.Context, id uint) ([]domain.TaskEvent, error)
}

// ProgressTracker is driven by the external worker pool.
type ProgressTracker interface {
	Claim(ctx context.Context, id uint) (*domain.Task, error)
	ClaimNext(ctx context.Context) (*domain.Task, error)
	SetTotalLinks(ctx context.Context, id uint, total int) (*domain.Task, error)
	Advance(ctx context.Context, id uint, processedDelta, foundDelta int) (*domain.Task, error)
	Complete(ctx context.Context, id uint) (*domain.Task, error)
	Fail(ctx context.Context, id uint, errorMessage string) (*domain.Task, error)
	ReclaimStale(ctx context.Context) (int, error)
}

type RecordScholarshipInput struct {
	TaskID              uint
	Title               string
	Amount              string
	Deadline            *time.Time
	FieldOfStudy        string
	LevelOfStudy        string
	EligibilityCriteria string
	ApplicationURL      string
	SourceURL           string
	LocationOfStudy     string
	ConfidenceScore     float64
	AISummary           *domain.AISummary
}

type ScholarshipService interface {
	Record(ctx context.Context, input RecordScholarshipInput) (*domain.Scholarship, error)
	Get(ctx context.Context, id uint) (*domain.Scholarship, error)
	List(ctx context.Context, filter ScholarshipFilter) ([]domain.Scholarship, error)
	Stats(ctx context.Context) (*domain.ScholarshipStats, error)
	Export(ctx context.Context, start, end *time.Time) ([]domain.Scholarship, error)
	ExportCSV(ctx context.Context, w io.Writer, start, end *time.Time) (int, error)
}

type AggregationService interface {
	Snapshot(ctx context.Context) (*domain.StatusSnapshot, error)
}

type SubmissionOutcome string

const (
	SubmissionCreated   SubmissionOutcome = "created"
	SubmissionDuplicate SubmissionOutcome = "duplicate"
	SubmissionInvalid   SubmissionOutcome = "invalid"
)

type SubmissionEntry struct {
	URL     string
	Outcome SubmissionOutcome
	TaskID  uint
}

type SubmissionResult struct {
	Created   int
	Duplicate int
	Invalid   int
	Entries   []SubmissionEntry
}

// Skipped combines duplicates and malformed URLs, matching the dashboard's
// single "skipped" counter.
func (r SubmissionResult) Skipped() int {
	return r.Duplicate + r.Invalid
}

type FileFormat string

const (
	FileFormatCSV FileFormat = "csv"
	FileFormatTXT FileFormat = "txt"
)

type IngestionService interface {
	BulkSubmit(ctx context.Context, urls []string) (*SubmissionResult, error)
	SubmitFromFile(ctx context.Context, content []byte, format FileFormat) (*SubmissionResult, error)
}
