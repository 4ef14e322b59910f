package domain

import "time"

type TaskStatusCounts struct {
	Pending    int64
	InProgress int64
	Completed  int64
	Failed     int64
}

func (c TaskStatusCounts) Total() int64 {
	return c.Pending + c.InProgress + c.Completed + c.Failed
}

// SuccessRate is completed/(completed+failed)*100, 0 with no finished tasks.
func (c TaskStatusCounts) SuccessRate() float64 {
	finished := c.Completed + c.Failed
	if finished == 0 {
		return 0
	}
	return float64(c.Completed) / float64(finished) * 100
}

// StatusSnapshot is the point-in-time aggregate polled by the dashboard.
type StatusSnapshot struct {
	Counts                 TaskStatusCounts
	TotalScholarships      int64
	AverageConfidenceScore float64
	ProcessingRate         float64 // completed tasks per minute
	SuccessRate            float64
	SystemUptime           time.Duration
	LastUpdate             time.Time
	TasksProgress          []Task
}

type ScholarshipStats struct {
	TotalCount           int64
	AverageConfidence    float64
	ByFieldOfStudy       map[string]int64
	ByLevelOfStudy       map[string]int64
	RecentAdditions      []Scholarship
	DailyCounts          map[string]int64
	AmountRanges         map[string]int64
	DeadlineDistribution map[string]int64
}
