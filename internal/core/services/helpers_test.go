package services

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/striveopps/backend/internal/config"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/infrastructure/db"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

var baseTime = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.NewConnection(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database))
	t.Cleanup(func() { _ = db.Close(database) })
	return database
}

// testEnv wires every service against one database and clock.
type testEnv struct {
	clock        *fakeClock
	log          *logger.Logger
	taskRepo     ports.TaskRepository
	eventRepo    ports.TaskEventRepository
	scholarRepo  ports.ScholarshipRepository
	tasks        ports.TaskService
	tracker      ports.ProgressTracker
	scholarships ports.ScholarshipService
	aggregation  ports.AggregationService
	ingestion    ports.IngestionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := newTestDB(t)
	log := logger.NewNop()
	clock := newFakeClock(baseTime)
	locks := NewKeyLocker(true)

	env := &testEnv{
		clock:       clock,
		log:         log,
		taskRepo:    db.NewTaskRepository(database, log),
		eventRepo:   db.NewTaskEventRepository(database, log),
		scholarRepo: db.NewScholarshipRepository(database, log),
	}
	env.tasks = NewTaskService(TaskServiceConfig{
		Repository: env.taskRepo,
		Events:     env.eventRepo,
		Locks:      locks,
		Logger:     log,
		Clock:      clock.Now,
	})
	env.tracker = NewProgressTracker(ProgressTrackerConfig{
		Repository:      env.taskRepo,
		Events:          env.eventRepo,
		Locks:           locks,
		Logger:          log,
		Clock:           clock.Now,
		RecrawlInterval: 24 * time.Hour,
		LeaseTimeout:    15 * time.Minute,
	})
	env.scholarships = NewScholarshipService(ScholarshipServiceConfig{
		Repository: env.scholarRepo,
		Tasks:      env.taskRepo,
		Logger:     log,
		Clock:      clock.Now,
	})
	env.aggregation = NewAggregationService(AggregationServiceConfig{
		Tasks:        env.taskRepo,
		Scholarships: env.scholarRepo,
		Logger:       log,
		Clock:        clock.Now,
		StartedAt:    baseTime,
		RateWindow:   time.Hour,
	})
	env.ingestion = NewIngestionService(IngestionServiceConfig{
		Tasks:  env.tasks,
		Logger: log,
	})
	return env
}

func ptr[T any](v T) *T {
	return &v
}
