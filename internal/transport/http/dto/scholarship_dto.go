package dto

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
)

type RecordScholarshipRequest struct {
	Title               string            `json:"title" validate:"required,max=500"`
	Amount              string            `json:"amount" validate:"max=100"`
	Deadline            string            `json:"deadline"`
	FieldOfStudy        string            `json:"field_of_study" validate:"max=200"`
	LevelOfStudy        string            `json:"level_of_study" validate:"max=100"`
	EligibilityCriteria string            `json:"eligibility_criteria"`
	ApplicationURL      string            `json:"application_url" validate:"omitempty,url"`
	SourceURL           string            `json:"source_url" validate:"omitempty,url"`
	LocationOfStudy     string            `json:"location_of_study" validate:"max=200"`
	ConfidenceScore     *float64          `json:"confidence_score" validate:"required,gte=0,lte=1"`
	AISummary           *domain.AISummary `json:"ai_summary"`
}

func (r *RecordScholarshipRequest) Validate() []string {
	details := validateStruct(r)
	if r.Deadline != "" {
		if _, err := ParseDate(r.Deadline); err != nil {
			details = append(details, "deadline is not a recognizable date")
		}
	}
	return details
}

// ToInput assumes Validate passed.
func (r *RecordScholarshipRequest) ToInput(taskID uint) ports.RecordScholarshipInput {
	input := ports.RecordScholarshipInput{
		TaskID:              taskID,
		Title:               r.Title,
		Amount:              r.Amount,
		FieldOfStudy:        r.FieldOfStudy,
		LevelOfStudy:        r.LevelOfStudy,
		EligibilityCriteria: r.EligibilityCriteria,
		ApplicationURL:      r.ApplicationURL,
		SourceURL:           r.SourceURL,
		LocationOfStudy:     r.LocationOfStudy,
		AISummary:           r.AISummary,
	}
	if r.ConfidenceScore != nil {
		input.ConfidenceScore = *r.ConfidenceScore
	}
	if r.Deadline != "" {
		if d, err := ParseDate(r.Deadline); err == nil {
			input.Deadline = &d
		}
	}
	return input
}

// ParseDate accepts RFC 3339 and the other layouts dateparse recognizes,
// interpreting zone-less values as UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

type ScholarshipResponse struct {
	ID                  uint              `json:"id"`
	TaskID              uint              `json:"task_id"`
	Title               string            `json:"title"`
	Amount              string            `json:"amount"`
	Deadline            *time.Time        `json:"deadline"`
	FieldOfStudy        string            `json:"field_of_study"`
	LevelOfStudy        string            `json:"level_of_study"`
	EligibilityCriteria string            `json:"eligibility_criteria"`
	ApplicationURL      string            `json:"application_url"`
	SourceURL           string            `json:"source_url"`
	LocationOfStudy     string            `json:"location_of_study"`
	ConfidenceScore     float64           `json:"confidence_score"`
	AISummary           *domain.AISummary `json:"ai_summary"`
	LastUpdated         time.Time         `json:"last_updated"`
	CreatedAt           time.Time         `json:"created_at"`
}

func ScholarshipToResponse(s *domain.Scholarship) ScholarshipResponse {
	return ScholarshipResponse{
		ID:                  s.ID,
		TaskID:              s.TaskID,
		Title:               s.Title,
		Amount:              s.Amount,
		Deadline:            s.Deadline,
		FieldOfStudy:        s.FieldOfStudy,
		LevelOfStudy:        s.LevelOfStudy,
		EligibilityCriteria: s.EligibilityCriteria,
		ApplicationURL:      s.ApplicationURL,
		SourceURL:           s.SourceURL,
		LocationOfStudy:     s.LocationOfStudy,
		ConfidenceScore:     s.ConfidenceScore,
		AISummary:           s.AISummary(),
		LastUpdated:         s.LastUpdated,
		CreatedAt:           s.CreatedAt,
	}
}

func ScholarshipsToResponse(items []domain.Scholarship) []ScholarshipResponse {
	out := make([]ScholarshipResponse, 0, len(items))
	for i := range items {
		out = append(out, ScholarshipToResponse(&items[i]))
	}
	return out
}

type ScholarshipStatsResponse struct {
	TotalCount           int64                 `json:"total_count"`
	AverageConfidence    float64               `json:"average_confidence"`
	ByFieldOfStudy       map[string]int64      `json:"by_field_of_study"`
	ByLevelOfStudy       map[string]int64      `json:"by_level_of_study"`
	RecentAdditions      []ScholarshipResponse `json:"recent_additions"`
	DailyCounts          map[string]int64      `json:"daily_counts"`
	AmountRanges         map[string]int64      `json:"amount_ranges"`
	DeadlineDistribution map[string]int64      `json:"deadline_distribution"`
}

func StatsToResponse(s *domain.ScholarshipStats) ScholarshipStatsResponse {
	return ScholarshipStatsResponse{
		TotalCount:           s.TotalCount,
		AverageConfidence:    s.AverageConfidence,
		ByFieldOfStudy:       s.ByFieldOfStudy,
		ByLevelOfStudy:       s.ByLevelOfStudy,
		RecentAdditions:      ScholarshipsToResponse(s.RecentAdditions),
		DailyCounts:          s.DailyCounts,
		AmountRanges:         s.AmountRanges,
		DeadlineDistribution: s.DeadlineDistribution,
	}
}
