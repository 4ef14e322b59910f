package dto

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-03-01T10:30:00Z", time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2025-03-01T10:30:00+02:00", time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)},
		{"March 1, 2025", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), got.String())
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseDate("2025-13-45")
	assert.Error(t, err)
}

func TestRecordScholarshipRequest_Validate(t *testing.T) {
	score := 0.5
	valid := RecordScholarshipRequest{Title: "Award", ConfidenceScore: &score, ApplicationURL: "https://apply.example.org"}
	assert.Empty(t, valid.Validate())

	high := 1.2
	tests := []struct {
		name string
		req  RecordScholarshipRequest
		want string
	}{
		{"missing title", RecordScholarshipRequest{ConfidenceScore: &score}, "title is required"},
		{"missing score", RecordScholarshipRequest{Title: "Award"}, "confidence_score is required"},
		{"score too high", RecordScholarshipRequest{Title: "Award", ConfidenceScore: &high}, "confidence_score must be less than or equal to 1"},
		{"bad url", RecordScholarshipRequest{Title: "Award", ConfidenceScore: &score, ApplicationURL: "nope"}, "application_url must be a valid URL"},
		{"bad deadline", RecordScholarshipRequest{Title: "Award", ConfidenceScore: &score, Deadline: "2025-13-45"}, "deadline is not a recognizable date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.req.Validate(), tt.want)
		})
	}
}

func TestRecordScholarshipRequest_ToInput(t *testing.T) {
	score := 0.75
	req := RecordScholarshipRequest{Title: "Award", Deadline: "2025-06-30", ConfidenceScore: &score}

	input := req.ToInput(7)
	assert.Equal(t, uint(7), input.TaskID)
	assert.Equal(t, 0.75, input.ConfidenceScore)
	require.NotNil(t, input.Deadline)
	assert.Equal(t, "2025-06-30", input.Deadline.Format("2006-01-02"))
}

func TestBulkSubmitRequest_Validate(t *testing.T) {
	assert.Contains(t, (&BulkSubmitRequest{}).Validate(), "urls is required")
	assert.Contains(t, (&BulkSubmitRequest{URLs: []string{}}).Validate(), "urls must be at least 1")
	assert.Empty(t, (&BulkSubmitRequest{URLs: []string{"https://a.example.org"}}).Validate())
}

func TestAdvanceRequest_Validate(t *testing.T) {
	assert.Empty(t, (&AdvanceRequest{ProcessedDelta: 4, FoundDelta: 1}).Validate())
	assert.Contains(t, (&AdvanceRequest{ProcessedDelta: -1}).Validate(), "processed_delta must be greater than or equal to 0")
	assert.Contains(t, (&AdvanceRequest{ProcessedDelta: math.MaxInt}).Validate(), "processed_delta must be less than or equal to 1000000")
	assert.Contains(t, (&AdvanceRequest{FoundDelta: 1000001}).Validate(), "found_delta must be less than or equal to 1000000")
}

func TestSubmissionToResponse(t *testing.T) {
	result := &ports.SubmissionResult{
		Created:   2,
		Duplicate: 1,
		Invalid:   1,
		Entries: []ports.SubmissionEntry{
			{URL: "https://a.example.org", Outcome: ports.SubmissionCreated, TaskID: 4},
			{URL: "https://b.example.org", Outcome: ports.SubmissionDuplicate},
			{URL: "bad", Outcome: ports.SubmissionInvalid},
			{URL: "https://c.example.org", Outcome: ports.SubmissionCreated, TaskID: 5},
		},
	}

	resp := SubmissionToResponse(result)
	assert.Equal(t, []uint{4, 5}, resp.TaskIDs)
	assert.Equal(t, 2, resp.TasksSkipped)
	assert.Nil(t, resp.TotalURLsFound)

	file := FileSubmissionToResponse(result)
	require.NotNil(t, file.TotalURLsFound)
	assert.Equal(t, 4, *file.TotalURLsFound)
	require.NotNil(t, file.ValidURLs)
	assert.Equal(t, 3, *file.ValidURLs)
}

func TestSnapshotToResponse(t *testing.T) {
	snap := &domain.StatusSnapshot{
		Counts:       domain.TaskStatusCounts{Pending: 2, Completed: 1},
		SystemUptime: 90 * time.Minute,
	}

	resp := SnapshotToResponse(snap)
	assert.Equal(t, int64(3), resp.TotalTasks)
	assert.Equal(t, "1h30m0s", resp.SystemUptime)
	assert.NotNil(t, resp.TasksProgress)
}
