package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
)

var errLeaseActive = fmt.Errorf("progress: lease still active: %w", domain.ErrInvalidState)

type ProgressTrackerConfig struct {
	Repository      ports.TaskRepository
	Events          ports.TaskEventRepository
	Locks           *KeyLocker
	Logger          *logger.Logger
	Clock           Clock
	RecrawlInterval time.Duration
	LeaseTimeout    time.Duration
	ClaimBatchSize  int
}

type progressTracker struct {
	repo            ports.TaskRepository
	locks           *KeyLocker
	logger          *logger.Logger
	now             Clock
	transitions     transitionLog
	recrawlInterval time.Duration
	leaseTimeout    time.Duration
	claimBatchSize  int
}

func NewProgressTracker(cfg ProgressTrackerConfig) ports.ProgressTracker {
	locks := cfg.Locks
	if locks == nil {
		locks = NewKeyLocker(true)
	}
	recrawl := cfg.RecrawlInterval
	if recrawl <= 0 {
		recrawl = 24 * time.Hour
	}
	lease := cfg.LeaseTimeout
	if lease <= 0 {
		lease = 15 * time.Minute
	}
	batch := cfg.ClaimBatchSize
	if batch <= 0 {
		batch = 5
	}
	return &progressTracker{
		repo:            cfg.Repository,
		locks:           locks,
		logger:          cfg.Logger,
		now:             clockOrDefault(cfg.Clock),
		transitions:     transitionLog{events: cfg.Events, log: cfg.Logger, now: cfg.Clock},
		recrawlInterval: recrawl,
		leaseTimeout:    lease,
		claimBatchSize:  batch,
	}
}

func (p *progressTracker) Claim(ctx context.Context, id uint) (*domain.Task, error) {
	unlock := p.locks.Lock(taskKey(id))
	defer unlock()

	task, err := p.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		if current.Status != domain.TaskStatusPending {
			return nil, ErrTaskNotPending
		}
		now := p.now()
		return map[string]interface{}{
			"status":     domain.TaskStatusInProgress,
			"start_time": now,
			"end_time":   nil,
			"updated_at": now,
		}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			p.logger.Infow("progress_claim_conflict", "id", id, "error", err)
		}
		return nil, notFoundAs(err, ErrTaskNotFound)
	}

	p.transitions.record(ctx, task, domain.TaskEventClaimed, domain.TaskStatusPending, "")
	p.logger.Infow("progress_claimed", "id", id, "url", task.URL)
	return task, nil
}

// ClaimNext claims the oldest due pending task, skipping ones another worker
// wins first.
func (p *progressTracker) ClaimNext(ctx context.Context) (*domain.Task, error) {
	ids, err := p.repo.DueIDs(ctx, p.now(), p.claimBatchSize)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		task, err := p.Claim(ctx, id)
		if err == nil {
			return task, nil
		}
		if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return nil, err
	}
	return nil, ErrNoTaskDue
}

func (p *progressTracker) SetTotalLinks(ctx context.Context, id uint, total int) (*domain.Task, error) {
	if total < 0 {
		return nil, ErrNegativeDelta
	}

	unlock := p.locks.Lock(taskKey(id))
	defer unlock()

	task, err := p.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		if current.Status != domain.TaskStatusInProgress {
			return nil, ErrTaskNotRunning
		}
		if total < current.ProcessedLinks {
			return nil, ErrTotalBelowProcessed
		}
		return map[string]interface{}{
			"total_links": total,
			"updated_at":  p.now(),
		}, nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	p.logger.Debugw("progress_total_set", "id", id, "total_links", total)
	return task, nil
}

// Advance adds to the run counters. A zero advance still refreshes the lease.
func (p *progressTracker) Advance(ctx context.Context, id uint, processedDelta, foundDelta int) (*domain.Task, error) {
	if processedDelta < 0 || foundDelta < 0 {
		return nil, ErrNegativeDelta
	}

	unlock := p.locks.Lock(taskKey(id))
	defer unlock()

	task, err := p.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		if current.Status != domain.TaskStatusInProgress {
			return nil, ErrTaskNotRunning
		}
		if processedDelta > math.MaxInt-current.ProcessedLinks || foundDelta > math.MaxInt-current.ScholarshipsFound {
			return nil, ErrDeltaTooLarge
		}
		processed := current.ProcessedLinks + processedDelta
		if current.TotalLinks > 0 && processed > current.TotalLinks {
			return nil, ErrProgressExceedsTotal
		}
		return map[string]interface{}{
			"processed_links":    processed,
			"scholarships_found": current.ScholarshipsFound + foundDelta,
			"updated_at":         p.now(),
		}, nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	p.logger.Debugw("progress_advanced", "id", id, "processed_links", task.ProcessedLinks, "total_links", task.TotalLinks)
	return task, nil
}

func (p *progressTracker) Complete(ctx context.Context, id uint) (*domain.Task, error) {
	unlock := p.locks.Lock(taskKey(id))
	defer unlock()

	task, err := p.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		if current.Status != domain.TaskStatusInProgress {
			return nil, ErrTaskNotRunning
		}
		end := p.now()
		updates := p.finish(current, end)
		updates["status"] = domain.TaskStatusCompleted
		updates["success_count"] = current.SuccessCount + 1
		updates["next_run"] = end.Add(p.recrawlInterval)
		return updates, nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}

	p.transitions.record(ctx, task, domain.TaskEventCompleted, domain.TaskStatusInProgress, "")
	p.logger.Infow("progress_completed", "id", id, "scholarships_found", task.ScholarshipsFound)
	return task, nil
}

func (p *progressTracker) Fail(ctx context.Context, id uint, errorMessage string) (*domain.Task, error) {
	errorMessage = strings.TrimSpace(errorMessage)
	if errorMessage == "" {
		return nil, ErrFailureMessageMissing
	}

	unlock := p.locks.Lock(taskKey(id))
	defer unlock()

	task, err := p.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		if current.Status != domain.TaskStatusInProgress {
			return nil, ErrTaskNotRunning
		}
		updates := p.finish(current, p.now())
		updates["status"] = domain.TaskStatusFailed
		updates["error_message"] = errorMessage
		updates["fail_count"] = current.FailCount + 1
		return updates, nil
	})
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}

	p.transitions.record(ctx, task, domain.TaskEventFailed, domain.TaskStatusInProgress, errorMessage)
	p.logger.Warnw("progress_failed", "id", id, "error_message", errorMessage)
	return task, nil
}

// ReclaimStale returns in-progress tasks whose lease expired to the queue.
func (p *progressTracker) ReclaimStale(ctx context.Context) (int, error) {
	cutoff := p.now().Add(-p.leaseTimeout)
	ids, err := p.repo.StaleIDs(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, id := range ids {
		task, err := p.reclaim(ctx, id, cutoff)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return reclaimed, err
		}
		reclaimed++
		p.transitions.record(ctx, task, domain.TaskEventReclaimed, domain.TaskStatusInProgress, "lease expired")
		p.logger.Warnw("progress_lease_reclaimed", "id", id, "url", task.URL)
	}
	metrics.LeasesReclaimedTotal.Add(float64(reclaimed))
	return reclaimed, nil
}

func (p *progressTracker) reclaim(ctx context.Context, id uint, cutoff time.Time) (*domain.Task, error) {
	unlock := p.locks.Lock(taskKey(id))
	defer unlock()

	return p.repo.Mutate(ctx, id, func(current *domain.Task) (map[string]interface{}, error) {
		if current.Status != domain.TaskStatusInProgress || !current.UpdatedAt.Before(cutoff) {
			return nil, errLeaseActive
		}
		now := p.now()
		return map[string]interface{}{
			"status":             domain.TaskStatusPending,
			"start_time":         nil,
			"total_links":        0,
			"processed_links":    0,
			"scholarships_found": 0,
			"next_run":           now,
			"updated_at":         now,
		}, nil
	})
}

// finish stamps the terminal timing columns shared by Complete and Fail.
func (p *progressTracker) finish(current *domain.Task, end time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"end_time":   end,
		"last_run":   end,
		"updated_at": end,
	}
	if elapsed, ok := current.Elapsed(end); ok {
		updates["processing_duration"] = elapsed.Seconds()
	}
	return updates
}
