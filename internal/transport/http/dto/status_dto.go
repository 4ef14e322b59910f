package dto

import (
	"time"

	"github.com/striveopps/backend/internal/domain"
)

type StatusResponse struct {
	TotalTasks             int64                  `json:"total_tasks"`
	Pending                int64                  `json:"pending"`
	InProgress             int64                  `json:"in_progress"`
	Completed              int64                  `json:"completed"`
	Failed                 int64                  `json:"failed"`
	TotalScholarships      int64                  `json:"total_scholarships"`
	AverageConfidenceScore float64                `json:"average_confidence_score"`
	ProcessingRate         float64                `json:"processing_rate"`
	SuccessRate            float64                `json:"success_rate"`
	SystemUptime           string                 `json:"system_uptime"`
	LastUpdate             time.Time              `json:"last_update"`
	TasksProgress          []TaskProgressResponse `json:"tasks_progress"`
}

func SnapshotToResponse(s *domain.StatusSnapshot) StatusResponse {
	return StatusResponse{
		TotalTasks:             s.Counts.Total(),
		Pending:                s.Counts.Pending,
		InProgress:             s.Counts.InProgress,
		Completed:              s.Counts.Completed,
		Failed:                 s.Counts.Failed,
		TotalScholarships:      s.TotalScholarships,
		AverageConfidenceScore: s.AverageConfidenceScore,
		ProcessingRate:         s.ProcessingRate,
		SuccessRate:            s.SuccessRate,
		SystemUptime:           s.SystemUptime.String(),
		LastUpdate:             s.LastUpdate,
		TasksProgress:          TasksToResponse(s.TasksProgress),
	}
}
