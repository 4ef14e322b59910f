package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
)

func newSourceTask(t *testing.T, env *testEnv, url string) *domain.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(context.Background(), url)
	require.NoError(t, err)
	return task
}

func record(t *testing.T, env *testEnv, input ports.RecordScholarshipInput) *domain.Scholarship {
	t.Helper()
	if input.ConfidenceScore == 0 {
		input.ConfidenceScore = 0.5
	}
	scholarship, err := env.scholarships.Record(context.Background(), input)
	require.NoError(t, err)
	return scholarship
}

func TestScholarshipService_Record(t *testing.T) {
	env := newTestEnv(t)
	task := newSourceTask(t, env, "https://example.edu/awards")

	got := record(t, env, ports.RecordScholarshipInput{
		TaskID:          task.ID,
		Title:           "  STEM Excellence Award ",
		Amount:          "$1,000 - $2,500",
		FieldOfStudy:    "Engineering",
		LevelOfStudy:    "undergraduate",
		ConfidenceScore: 0.9,
		AISummary: &domain.AISummary{
			AmountAnalysis: &domain.AmountAnalysis{Type: "range"},
		},
	})

	assert.NotZero(t, got.ID)
	assert.Equal(t, "STEM Excellence Award", got.Title)
	assert.Equal(t, task.URL, got.SourceURL)
	require.NotNil(t, got.AmountMin)
	require.NotNil(t, got.AmountMax)
	assert.Equal(t, 1000.0, *got.AmountMin)
	assert.Equal(t, 2500.0, *got.AmountMax)
	assert.True(t, got.LastUpdated.Equal(baseTime))

	stored, err := env.scholarships.Get(context.Background(), got.ID)
	require.NoError(t, err)
	summary := stored.AISummary()
	require.NotNil(t, summary)
	assert.Equal(t, "range", summary.AmountAnalysis.Type)

	// Recording never touches the task's run counters.
	after, err := env.tasks.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Zero(t, after.ScholarshipsFound)
}

func TestScholarshipService_Record_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := newSourceTask(t, env, "https://example.edu/awards")

	tests := []struct {
		name  string
		input ports.RecordScholarshipInput
		want  error
	}{
		{"confidence above one", ports.RecordScholarshipInput{TaskID: task.ID, Title: "A", ConfidenceScore: 1.5}, ErrScholarshipInvalidConfidence},
		{"negative confidence", ports.RecordScholarshipInput{TaskID: task.ID, Title: "A", ConfidenceScore: -0.1}, ErrScholarshipInvalidConfidence},
		{"nan confidence", ports.RecordScholarshipInput{TaskID: task.ID, Title: "A", ConfidenceScore: math.NaN()}, ErrScholarshipInvalidConfidence},
		{"blank title", ports.RecordScholarshipInput{TaskID: task.ID, Title: "  ", ConfidenceScore: 0.5}, ErrScholarshipMissingField},
		{"unknown task", ports.RecordScholarshipInput{TaskID: 999, Title: "A", ConfidenceScore: 0.5}, ErrScholarshipUnknownTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.scholarships.Record(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := env.scholarships.Get(ctx, 12345)
	assert.ErrorIs(t, err, ErrScholarshipNotFound)
}

func TestScholarshipService_List_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := newSourceTask(t, env, "https://first.example.org")
	second := newSourceTask(t, env, "https://second.example.org")

	record(t, env, ports.RecordScholarshipInput{TaskID: first.ID, Title: "Small", Amount: "$500", FieldOfStudy: "Engineering", LevelOfStudy: "undergraduate", ConfidenceScore: 0.4})
	env.clock.Advance(time.Minute)
	record(t, env, ports.RecordScholarshipInput{TaskID: first.ID, Title: "Medium", Amount: "$2,000", FieldOfStudy: "Software Engineering", LevelOfStudy: "graduate", ConfidenceScore: 0.8})
	env.clock.Advance(time.Minute)
	record(t, env, ports.RecordScholarshipInput{TaskID: second.ID, Title: "Range", Amount: "$5,000 - $7,500", FieldOfStudy: "Biology", LevelOfStudy: "graduate", ConfidenceScore: 0.95})
	env.clock.Advance(time.Minute)
	record(t, env, ports.RecordScholarshipInput{TaskID: second.ID, Title: "Large", Amount: "$30k", FieldOfStudy: "Medicine", ConfidenceScore: 0.7})
	env.clock.Advance(time.Minute)
	record(t, env, ports.RecordScholarshipInput{TaskID: second.ID, Title: "Unknown", Amount: "varies", ConfidenceScore: 0.6})

	titles := func(list []domain.Scholarship) []string {
		out := make([]string, 0, len(list))
		for _, s := range list {
			out = append(out, s.Title)
		}
		return out
	}

	all, err := env.scholarships.List(ctx, ports.ScholarshipFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown", "Large", "Range", "Medium", "Small"}, titles(all))

	tests := []struct {
		name   string
		filter ports.ScholarshipFilter
		want   []string
	}{
		{"field contains", ports.ScholarshipFilter{FieldOfStudy: "ENGINEER"}, []string{"Medium", "Small"}},
		{"level exact", ports.ScholarshipFilter{LevelOfStudy: "graduate"}, []string{"Range", "Medium"}},
		{"min confidence", ports.ScholarshipFilter{MinConfidence: 0.75}, []string{"Range", "Medium"}},
		{"amount overlap", ports.ScholarshipFilter{MinAmount: ptr(1000.0), MaxAmount: ptr(6000.0)}, []string{"Range", "Medium"}},
		{"min amount only", ports.ScholarshipFilter{MinAmount: ptr(10000.0)}, []string{"Large"}},
		{"by task", ports.ScholarshipFilter{TaskID: ptr(first.ID)}, []string{"Medium", "Small"}},
		{"by source", ports.ScholarshipFilter{SourceURL: "second.example"}, []string{"Unknown", "Large", "Range"}},
		{"paged", ports.ScholarshipFilter{Skip: 1, Limit: 2}, []string{"Large", "Range"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.scholarships.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestScholarshipService_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := newSourceTask(t, env, "https://stats.example.org")

	record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: "Early", Amount: "$500", FieldOfStudy: "Engineering", LevelOfStudy: "undergraduate", ConfidenceScore: 0.5})

	// Stats are computed on 2024-05-17; month ends June 1, quarter ends July 1.
	env.clock.Advance(48 * time.Hour)
	deadline := func(y int, m time.Month, d int) *time.Time {
		return ptr(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: "Past", Amount: "$2,000", FieldOfStudy: "Engineering", Deadline: deadline(2024, time.May, 1), ConfidenceScore: 0.7})
	record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: "Soon", Amount: "$30k", LevelOfStudy: "graduate", Deadline: deadline(2024, time.May, 30), ConfidenceScore: 0.9})
	record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: "Quarter", Amount: "$7,500", Deadline: deadline(2024, time.June, 10), ConfidenceScore: 0.3})
	record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: "Later", Amount: "varies", Deadline: deadline(2024, time.September, 1), ConfidenceScore: 0.6})

	stats, err := env.scholarships.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalCount)
	assert.InDelta(t, 0.6, stats.AverageConfidence, 0.0001)
	assert.Equal(t, map[string]int64{"Engineering": 2}, stats.ByFieldOfStudy)
	assert.Equal(t, map[string]int64{"undergraduate": 1, "graduate": 1}, stats.ByLevelOfStudy)

	assert.Equal(t, map[string]int64{
		"2024-05-11": 0,
		"2024-05-12": 0,
		"2024-05-13": 0,
		"2024-05-14": 0,
		"2024-05-15": 1,
		"2024-05-16": 0,
		"2024-05-17": 4,
	}, stats.DailyCounts)

	assert.Equal(t, map[string]int64{
		domain.AmountRangeUnder1K:  1,
		domain.AmountRange1KTo5K:   1,
		domain.AmountRange5KTo10K:  1,
		domain.AmountRange10KTo25K: 0,
		domain.AmountRangeOver25K:  1,
		domain.AmountRangeUnknown:  1,
	}, stats.AmountRanges)

	assert.Equal(t, map[string]int64{
		domain.DeadlinePast:        1,
		domain.DeadlineThisMonth:   1,
		domain.DeadlineThisQuarter: 1,
		domain.DeadlineLater:       1,
		domain.DeadlineUnknown:     1,
	}, stats.DeadlineDistribution)

	require.Len(t, stats.RecentAdditions, 5)
	assert.Equal(t, "Later", stats.RecentAdditions[0].Title)

	again, err := env.scholarships.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalCount, again.TotalCount)
	assert.Equal(t, stats.DailyCounts, again.DailyCounts)
	assert.Equal(t, stats.AmountRanges, again.AmountRanges)
	assert.Equal(t, stats.DeadlineDistribution, again.DeadlineDistribution)
}

func TestScholarshipService_Stats_Empty(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.scholarships.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalCount)
	assert.Zero(t, stats.AverageConfidence)
	assert.Empty(t, stats.ByFieldOfStudy)
	assert.NotNil(t, stats.RecentAdditions)
	assert.Len(t, stats.DailyCounts, 7)
	assert.Len(t, stats.AmountRanges, len(domain.AmountRangeBuckets()))
	assert.Len(t, stats.DeadlineDistribution, len(domain.DeadlineBuckets()))
}

func TestScholarshipService_Export(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := newSourceTask(t, env, "https://export.example.org")

	for _, title := range []string{"At start", "Middle", "At end", "After"} {
		record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: title})
		env.clock.Advance(time.Hour)
	}

	all, err := env.scholarships.Export(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	start := baseTime
	end := baseTime.Add(2 * time.Hour)
	ranged, err := env.scholarships.Export(ctx, &start, &end)
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	future := baseTime.Add(48 * time.Hour)
	none, err := env.scholarships.Export(ctx, &future, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = env.scholarships.Export(ctx, &end, &start)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestScholarshipService_ExportCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := newSourceTask(t, env, "https://csv.example.org")

	deadline := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	saved := record(t, env, ports.RecordScholarshipInput{
		TaskID:              task.ID,
		Title:               `Smith, "Jr." Memorial Award`,
		Amount:              "$1,500",
		Deadline:            &deadline,
		EligibilityCriteria: "Line one\nLine two, with comma",
		ConfidenceScore:     0.85,
		AISummary: &domain.AISummary{
			AmountAnalysis:  &domain.AmountAnalysis{Type: "fixed", IsRenewable: true},
			ConfidenceScore: ptr(0.7),
		},
	})
	env.clock.Advance(time.Minute)
	record(t, env, ports.RecordScholarshipInput{TaskID: task.ID, Title: "Plain"})

	var buf bytes.Buffer
	n, err := env.scholarships.ExportCSV(ctx, &buf, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportColumns, rows[0])

	plain := rows[1]
	assert.Equal(t, "Plain", plain[2])
	assert.Equal(t, "", plain[13])
	assert.Equal(t, "", plain[16])

	row := rows[2]
	assert.Equal(t, `Smith, "Jr." Memorial Award`, row[2])
	assert.Equal(t, "$1,500", row[3])
	assert.Equal(t, "2024-12-01T00:00:00Z", row[4])
	assert.Equal(t, "Line one\nLine two, with comma", row[7])
	assert.Equal(t, task.URL, row[9])
	assert.Equal(t, "0.85", row[11])
	assert.Equal(t, saved.LastUpdated.UTC().Format(time.RFC3339), row[12])
	assert.Equal(t, "fixed", row[13])
	assert.Equal(t, "true", row[14])
	assert.Equal(t, "", row[15])
	assert.Equal(t, "0.7", row[16])
}
