package services

import (
	"context"
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
	"golang.org/x/sync/errgroup"
)

type AggregationServiceConfig struct {
	Tasks         ports.TaskRepository
	Scholarships  ports.ScholarshipRepository
	Logger        *logger.Logger
	Clock         Clock
	StartedAt     time.Time
	RateWindow    time.Duration
	ProgressLimit int
}

type aggregationService struct {
	tasks         ports.TaskRepository
	scholarships  ports.ScholarshipRepository
	logger        *logger.Logger
	now           Clock
	startedAt     time.Time
	rateWindow    time.Duration
	progressLimit int
}

func NewAggregationService(cfg AggregationServiceConfig) ports.AggregationService {
	now := clockOrDefault(cfg.Clock)
	started := cfg.StartedAt
	if started.IsZero() {
		started = now()
	}
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Hour
	}
	limit := cfg.ProgressLimit
	if limit <= 0 {
		limit = 100
	}
	return &aggregationService{
		tasks:         cfg.Tasks,
		scholarships:  cfg.Scholarships,
		logger:        cfg.Logger,
		now:           now,
		startedAt:     started,
		rateWindow:    window,
		progressLimit: limit,
	}
}

// Snapshot reads both stores concurrently and never writes.
func (a *aggregationService) Snapshot(ctx context.Context) (*domain.StatusSnapshot, error) {
	begin := time.Now()
	defer func() {
		metrics.SnapshotDuration.Observe(time.Since(begin).Seconds())
	}()

	now := a.now()
	var (
		counts           domain.TaskStatusCounts
		scholarshipCount int64
		averageScore     float64
		recentCompleted  int64
		progress         []domain.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = a.tasks.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		scholarshipCount, averageScore, err = a.scholarships.CountAndAverage(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recentCompleted, err = a.tasks.CountCompletedBetween(gctx, now.Add(-a.rateWindow), now)
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = a.tasks.RecentProgress(gctx, a.progressLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.Errorw("status_snapshot_failed", "error", err)
		return nil, err
	}

	if progress == nil {
		progress = []domain.Task{}
	}
	if scholarshipCount == 0 {
		averageScore = 0
	}

	uptime := now.Sub(a.startedAt)
	if uptime < 0 {
		uptime = 0
	}

	return &domain.StatusSnapshot{
		Counts:                 counts,
		TotalScholarships:      scholarshipCount,
		AverageConfidenceScore: averageScore,
		ProcessingRate:         float64(recentCompleted) / a.rateWindow.Minutes(),
		SuccessRate:            counts.SuccessRate(),
		SystemUptime:           uptime.Truncate(time.Second),
		LastUpdate:             now,
		TasksProgress:          progress,
	}, nil
}
