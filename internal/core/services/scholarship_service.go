package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
)

const (
	recentAdditionsLimit = 5
	dailyCountDays       = 7
	dayKeyLayout         = "2006-01-02"
)

type ScholarshipServiceConfig struct {
	Repository ports.ScholarshipRepository
	Tasks      ports.TaskRepository
	Logger     *logger.Logger
	Clock      Clock
}

type scholarshipService struct {
	repo   ports.ScholarshipRepository
	tasks  ports.TaskRepository
	logger *logger.Logger
	now    Clock
}

func NewScholarshipService(cfg ScholarshipServiceConfig) ports.ScholarshipService {
	return &scholarshipService{
		repo:   cfg.Repository,
		tasks:  cfg.Tasks,
		logger: cfg.Logger,
		now:    clockOrDefault(cfg.Clock),
	}
}

// Record stores one extracted scholarship. Task counters are not touched;
// workers report found counts through the progress tracker.
func (s *scholarshipService) Record(ctx context.Context, input ports.RecordScholarshipInput) (*domain.Scholarship, error) {
	if math.IsNaN(input.ConfidenceScore) || input.ConfidenceScore < 0 || input.ConfidenceScore > 1 {
		return nil, ErrScholarshipInvalidConfidence
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrScholarshipMissingField
	}

	task, err := s.tasks.GetByID(ctx, input.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrScholarshipUnknownTask
		}
		return nil, err
	}

	sourceURL := strings.TrimSpace(input.SourceURL)
	if sourceURL == "" {
		sourceURL = task.URL
	}

	now := s.now()
	scholarship := &domain.Scholarship{
		TaskID:              task.ID,
		Title:               title,
		Amount:              strings.TrimSpace(input.Amount),
		Deadline:            input.Deadline,
		FieldOfStudy:        strings.TrimSpace(input.FieldOfStudy),
		LevelOfStudy:        strings.TrimSpace(input.LevelOfStudy),
		EligibilityCriteria: input.EligibilityCriteria,
		ApplicationURL:      strings.TrimSpace(input.ApplicationURL),
		SourceURL:           sourceURL,
		LocationOfStudy:     strings.TrimSpace(input.LocationOfStudy),
		ConfidenceScore:     input.ConfidenceScore,
		LastUpdated:         now,
		CreatedAt:           now,
	}
	scholarship.AmountMin, scholarship.AmountMax = ExtractAmountRange(scholarship.Amount)
	if err := scholarship.SetAISummary(input.AISummary); err != nil {
		s.logger.Warnw("scholarship_ai_summary_dropped", "task_id", task.ID, "error", err)
	}

	if err := s.repo.Create(ctx, scholarship); err != nil {
		return nil, err
	}
	metrics.ScholarshipsRecordedTotal.Inc()
	s.logger.Infow("scholarship_recorded", "id", scholarship.ID, "task_id", task.ID, "title", title)
	return scholarship, nil
}

func (s *scholarshipService) Get(ctx context.Context, id uint) (*domain.Scholarship, error) {
	scholarship, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrScholarshipNotFound)
	}
	return scholarship, nil
}

func (s *scholarshipService) List(ctx context.Context, filter ports.ScholarshipFilter) ([]domain.Scholarship, error) {
	filter.Skip, filter.Limit = clampPage(filter.Skip, filter.Limit)
	return s.repo.List(ctx, filter)
}

// Stats is read-only; repeated calls without writes in between are identical.
func (s *scholarshipService) Stats(ctx context.Context) (*domain.ScholarshipStats, error) {
	now := s.now()

	total, average, err := s.repo.CountAndAverage(ctx)
	if err != nil {
		return nil, err
	}
	byField, err := s.repo.CountBy(ctx, "field_of_study")
	if err != nil {
		return nil, err
	}
	byLevel, err := s.repo.CountBy(ctx, "level_of_study")
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.Recent(ctx, recentAdditionsLimit)
	if err != nil {
		return nil, err
	}

	today := startOfDay(now)
	windowStart := today.AddDate(0, 0, -(dailyCountDays - 1))
	stamps, err := s.repo.UpdatedSince(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	amounts, err := s.repo.AmountRanges(ctx)
	if err != nil {
		return nil, err
	}
	monthEnd := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	quarterEnd := time.Date(now.Year(), quarterEndMonth(now.Month()), 1, 0, 0, 0, 0, time.UTC)
	deadlines, err := s.repo.DeadlineDistribution(ctx, now, monthEnd, quarterEnd)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]int64, dailyCountDays)
	for d := 0; d < dailyCountDays; d++ {
		daily[windowStart.AddDate(0, 0, d).Format(dayKeyLayout)] = 0
	}
	for _, ts := range stamps {
		key := ts.UTC().Format(dayKeyLayout)
		if _, ok := daily[key]; ok {
			daily[key]++
		}
	}

	if recent == nil {
		recent = []domain.Scholarship{}
	}

	return &domain.ScholarshipStats{
		TotalCount:           total,
		AverageConfidence:    average,
		ByFieldOfStudy:       groupMap(byField, nil),
		ByLevelOfStudy:       groupMap(byLevel, nil),
		RecentAdditions:      recent,
		DailyCounts:          daily,
		AmountRanges:         groupMap(amounts, domain.AmountRangeBuckets()),
		DeadlineDistribution: groupMap(deadlines, domain.DeadlineBuckets()),
	}, nil
}

func (s *scholarshipService) Export(ctx context.Context, start, end *time.Time) ([]domain.Scholarship, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidDateRange
	}
	scholarships, err := s.repo.ExportRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if scholarships == nil {
		scholarships = []domain.Scholarship{}
	}
	return scholarships, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// quarterEndMonth returns the first month of the following quarter; time.Date
// normalizes month 13 into January of the next year.
func quarterEndMonth(m time.Month) time.Month {
	return time.Month(((int(m)-1)/3+1)*3 + 1)
}

// groupMap turns grouped rows into a map, seeding every known bucket with 0.
func groupMap(rows []ports.GroupCount, buckets []string) map[string]int64 {
	out := make(map[string]int64, len(rows)+len(buckets))
	for _, b := range buckets {
		out[b] = 0
	}
	for _, row := range rows {
		out[row.Bucket] += row.Count
	}
	return out
}
