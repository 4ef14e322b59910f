package dto

import (
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
)

type CreateTaskRequest struct {
	URL string `json:"url" validate:"required"`
}

func (r *CreateTaskRequest) Validate() []string {
	return validateStruct(r)
}

type BulkSubmitRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,max=10000"`
}

func (r *BulkSubmitRequest) Validate() []string {
	return validateStruct(r)
}

type BulkSubmitResponse struct {
	Message        string `json:"message,omitempty"`
	TotalURLsFound *int   `json:"total_urls_found,omitempty"`
	ValidURLs      *int   `json:"valid_urls,omitempty"`
	TasksCreated   int    `json:"tasks_created"`
	TasksSkipped   int    `json:"tasks_skipped"`
	TasksInvalid   int    `json:"tasks_invalid"`
	TasksDuplicate int    `json:"tasks_duplicate"`
	TaskIDs        []uint `json:"task_ids"`
}

func SubmissionToResponse(result *ports.SubmissionResult) BulkSubmitResponse {
	ids := make([]uint, 0, result.Created)
	for _, e := range result.Entries {
		if e.Outcome == ports.SubmissionCreated {
			ids = append(ids, e.TaskID)
		}
	}
	return BulkSubmitResponse{
		TasksCreated:   result.Created,
		TasksSkipped:   result.Skipped(),
		TasksInvalid:   result.Invalid,
		TasksDuplicate: result.Duplicate,
		TaskIDs:        ids,
	}
}

// FileSubmissionToResponse adds the per-file totals reported for uploads.
func FileSubmissionToResponse(result *ports.SubmissionResult) BulkSubmitResponse {
	resp := SubmissionToResponse(result)
	total := len(result.Entries)
	valid := result.Created + result.Duplicate
	resp.Message = "File processed successfully"
	resp.TotalURLsFound = &total
	resp.ValidURLs = &valid
	return resp
}

type TaskProgressResponse struct {
	TaskID             uint              `json:"task_id"`
	URL                string            `json:"url"`
	Status             domain.TaskStatus `json:"status"`
	TotalLinks         int               `json:"total_links"`
	ProcessedLinks     int               `json:"processed_links"`
	ScholarshipsFound  int               `json:"scholarships_found"`
	ProgressPercentage float64           `json:"progress_percentage"`
	StartTime          *time.Time        `json:"start_time"`
	EndTime            *time.Time        `json:"end_time"`
	ErrorMessage       *string           `json:"error_message"`
	ProcessingDuration *float64          `json:"processing_duration"`
	SuccessCount       int               `json:"success_count"`
	FailCount          int               `json:"fail_count"`
	CreatedAt          time.Time         `json:"created_at"`
	LastRun            *time.Time        `json:"last_run"`
	NextRun            *time.Time        `json:"next_run"`
}

func TaskToResponse(t *domain.Task) TaskProgressResponse {
	return TaskProgressResponse{
		TaskID:             t.ID,
		URL:                t.URL,
		Status:             t.Status,
		TotalLinks:         t.TotalLinks,
		ProcessedLinks:     t.ProcessedLinks,
		ScholarshipsFound:  t.ScholarshipsFound,
		ProgressPercentage: t.ProgressPercentage(),
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		ErrorMessage:       t.ErrorMessage,
		ProcessingDuration: t.ProcessingDuration,
		SuccessCount:       t.SuccessCount,
		FailCount:          t.FailCount,
		CreatedAt:          t.CreatedAt,
		LastRun:            t.LastRun,
		NextRun:            t.NextRun,
	}
}

func TasksToResponse(tasks []domain.Task) []TaskProgressResponse {
	out := make([]TaskProgressResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, TaskToResponse(&tasks[i]))
	}
	return out
}

type SearchTasksResponse struct {
	Query        string                 `json:"query"`
	StatusFilter *string                `json:"status_filter"`
	Count        int                    `json:"count"`
	Results      []TaskProgressResponse `json:"results"`
}

// Worker requests

type DeleteTaskResponse struct {
	Message string `json:"message"`
	TaskID  uint   `json:"task_id"`
}

type SetTotalLinksRequest struct {
	TotalLinks *int `json:"total_links" validate:"required,gte=0"`
}

func (r *SetTotalLinksRequest) Validate() []string {
	return validateStruct(r)
}

type AdvanceRequest struct {
	ProcessedDelta int `json:"processed_delta" validate:"gte=0,lte=1000000"`
	FoundDelta     int `json:"found_delta" validate:"gte=0,lte=1000000"`
}

func (r *AdvanceRequest) Validate() []string {
	return validateStruct(r)
}

type FailTaskRequest struct {
	ErrorMessage string `json:"error_message" validate:"required"`
}

func (r *FailTaskRequest) Validate() []string {
	return validateStruct(r)
}
