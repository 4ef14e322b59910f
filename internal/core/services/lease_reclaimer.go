package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/infrastructure/logger"
)

const defaultEventRetention = 30 * 24 * time.Hour

type LeaseReclaimerConfig struct {
	Tracker        ports.ProgressTracker
	Events         ports.TaskEventRepository
	Logger         *logger.Logger
	Clock          Clock
	Schedule       string
	EventRetention time.Duration
	RunTimeout     time.Duration
}

// LeaseReclaimer periodically returns abandoned in-progress tasks to the
// queue and prunes the task event trail.
type LeaseReclaimer struct {
	tracker   ports.ProgressTracker
	events    ports.TaskEventRepository
	logger    *logger.Logger
	now       Clock
	schedule  string
	retention time.Duration
	timeout   time.Duration
	cron      *cron.Cron
}

func NewLeaseReclaimer(cfg LeaseReclaimerConfig) *LeaseReclaimer {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every 1m"
	}
	retention := cfg.EventRetention
	if retention <= 0 {
		retention = defaultEventRetention
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LeaseReclaimer{
		tracker:   cfg.Tracker,
		events:    cfg.Events,
		logger:    cfg.Logger,
		now:       clockOrDefault(cfg.Clock),
		schedule:  schedule,
		retention: retention,
		timeout:   timeout,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

func (r *LeaseReclaimer) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.sweep); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("@daily", r.prune); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Infow("lease_reclaimer_started", "schedule", r.schedule)
	return nil
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (r *LeaseReclaimer) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warnw("lease_reclaimer_stop_timeout")
	}
}

// RunOnce performs a single sweep and reports how many tasks were requeued.
func (r *LeaseReclaimer) RunOnce(ctx context.Context) (int, error) {
	n, err := r.tracker.ReclaimStale(ctx)
	if err != nil {
		r.logger.Errorw("lease_reclaimer_sweep_failed", "reclaimed", n, "error", err)
		return n, err
	}
	if n > 0 {
		r.logger.Infow("lease_reclaimer_sweep_ok", "reclaimed", n)
	}
	return n, nil
}

func (r *LeaseReclaimer) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_, _ = r.RunOnce(ctx)
}

func (r *LeaseReclaimer) prune() {
	if r.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.events.DeleteBefore(ctx, r.now().Add(-r.retention)); err != nil {
		r.logger.Errorw("lease_reclaimer_prune_failed", "error", err)
	}
}
