package domain

import (
	"encoding/json"
	"time"
)

// Scholarship is one extracted record attributed to a Task. Records are
// append-only; task deletion never cascades here.
type Scholarship struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TaskID uint `gorm:"not null;index" json:"task_id"`

	Title               string     `gorm:"size:500;index" json:"title"`
	Amount              string     `gorm:"size:100" json:"amount"`
	AmountMin           *float64   `gorm:"index" json:"-"`
	AmountMax           *float64   `gorm:"index" json:"-"`
	Deadline            *time.Time `gorm:"index" json:"deadline,omitempty"`
	FieldOfStudy        string     `gorm:"size:200;index" json:"field_of_study"`
	LevelOfStudy        string     `gorm:"size:100;index" json:"level_of_study"`
	EligibilityCriteria string     `gorm:"type:text" json:"eligibility_criteria"`
	ApplicationURL      string     `gorm:"size:500" json:"application_url"`
	SourceURL           string     `gorm:"size:500;index" json:"source_url"`
	LocationOfStudy     string     `gorm:"size:200" json:"location_of_study"`
	ConfidenceScore     float64    `gorm:"not null;default:0;index" json:"confidence_score"`

	// AISummaryJSON holds the raw payload; read it through AISummary.
	AISummaryJSON *string `gorm:"column:ai_summary;type:text" json:"-"`

	LastUpdated time.Time `gorm:"index" json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Scholarship) TableName() string {
	return "scholarships"
}

// AISummary is the structured analysis attached by the extraction pipeline.
// Its confidence score is independent of Scholarship.ConfidenceScore.
type AISummary struct {
	AmountAnalysis          *AmountAnalysis `json:"amount_analysis,omitempty"`
	DeadlineInfo            *DeadlineInfo   `json:"deadline_info,omitempty"`
	EligibilityRequirements []string        `json:"eligibility_requirements,omitempty"`
	FieldOfStudy            string          `json:"field_of_study,omitempty"`
	LevelOfStudy            string          `json:"level_of_study,omitempty"`
	ConfidenceScore         *float64        `json:"confidence_score,omitempty"`
}

type AmountAnalysis struct {
	Type        string   `json:"type,omitempty"`
	IsRenewable bool     `json:"is_renewable"`
	Conditions  []string `json:"conditions,omitempty"`
}

type DeadlineInfo struct {
	Date        string `json:"date,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
}

func (a *AISummary) empty() bool {
	return a.AmountAnalysis == nil &&
		a.DeadlineInfo == nil &&
		len(a.EligibilityRequirements) == 0 &&
		a.FieldOfStudy == "" &&
		a.LevelOfStudy == "" &&
		a.ConfidenceScore == nil
}

// ParseAISummary decodes a stored payload. Malformed or empty payloads yield
// nil so consumers render "not available" instead of failing.
func ParseAISummary(raw string) *AISummary {
	if raw == "" {
		return nil
	}
	var summary AISummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil
	}
	if summary.empty() {
		return nil
	}
	return &summary
}

func (s *Scholarship) AISummary() *AISummary {
	if s.AISummaryJSON == nil {
		return nil
	}
	return ParseAISummary(*s.AISummaryJSON)
}

func (s *Scholarship) SetAISummary(summary *AISummary) error {
	if summary == nil || summary.empty() {
		s.AISummaryJSON = nil
		return nil
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	raw := string(b)
	s.AISummaryJSON = &raw
	return nil
}
