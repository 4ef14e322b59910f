package services

import (
	"fmt"

	"github.com/striveopps/backend/internal/domain"
)

// Task errors
var (
	ErrTaskNotFound      = fmt.Errorf("task: %w", domain.ErrNotFound)
	ErrTaskDuplicateURL  = fmt.Errorf("task: %w", domain.ErrDuplicateURL)
	ErrTaskInvalidURL    = fmt.Errorf("task: invalid url: %w", domain.ErrValidation)
	ErrTaskNotRetryable  = fmt.Errorf("task: only failed tasks can be retried: %w", domain.ErrInvalidState)
	ErrTaskQueryTooShort = fmt.Errorf("task: search query must be at least %d characters: %w", minSearchQueryLength, domain.ErrValidation)
	ErrTaskRunning       = fmt.Errorf("task: running tasks cannot be deleted: %w", domain.ErrInvalidState)
	ErrTaskInvalidStatus = fmt.Errorf("task: unknown status: %w", domain.ErrValidation)
)

// Progress errors
var (
	ErrTaskNotPending        = fmt.Errorf("progress: task is not pending: %w", domain.ErrInvalidState)
	ErrTaskNotRunning        = fmt.Errorf("progress: task is not in progress: %w", domain.ErrInvalidState)
	ErrNoTaskDue             = fmt.Errorf("progress: no pending task is due: %w", domain.ErrNotFound)
	ErrNegativeDelta         = fmt.Errorf("progress: deltas must not be negative: %w", domain.ErrValidation)
	ErrDeltaTooLarge         = fmt.Errorf("progress: delta overflows counter: %w", domain.ErrValidation)
	ErrProgressExceedsTotal  = fmt.Errorf("progress: processed links would exceed total links: %w", domain.ErrValidation)
	ErrTotalBelowProcessed   = fmt.Errorf("progress: total links below processed links: %w", domain.ErrValidation)
	ErrFailureMessageMissing = fmt.Errorf("progress: failure message is required: %w", domain.ErrValidation)
)

// Scholarship errors
var (
	ErrScholarshipNotFound          = fmt.Errorf("scholarship: %w", domain.ErrNotFound)
	ErrScholarshipInvalidConfidence = fmt.Errorf("scholarship: confidence score must be within [0,1]: %w", domain.ErrValidation)
	ErrScholarshipMissingField      = fmt.Errorf("scholarship: missing required field: %w", domain.ErrValidation)
	ErrScholarshipUnknownTask       = fmt.Errorf("scholarship: unknown task: %w", domain.ErrValidation)
	ErrInvalidDateRange             = fmt.Errorf("scholarship: start date after end date: %w", domain.ErrValidation)
)

// Ingestion errors
var (
	ErrUnsupportedFileFormat = fmt.Errorf("ingestion: only csv and txt files are supported: %w", domain.ErrValidation)
	ErrMalformedFile         = fmt.Errorf("ingestion: malformed file: %w", domain.ErrValidation)
)
