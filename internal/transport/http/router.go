package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/striveopps/backend/internal/config"
	"github.com/striveopps/backend/internal/core/services"
	"github.com/striveopps/backend/internal/infrastructure/db"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/transport/http/handlers"
	httpmw "github.com/striveopps/backend/internal/transport/http/middleware"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB        *gorm.DB
	Logger    *logger.Logger
	Config    *config.Config
	StartedAt time.Time
	// Clock overrides the wall clock; nil uses UTC now.
	Clock services.Clock
}

// SetupRoutes wires repositories, services and handlers onto app and returns
// the lease reclaimer for the caller to start and stop.
func SetupRoutes(app *fiber.App, cfg RouterConfig) *services.LeaseReclaimer {
	engine := cfg.Config.Engine

	// Initialize repositories
	taskRepo := db.NewTaskRepository(cfg.DB, cfg.Logger)
	eventRepo := db.NewTaskEventRepository(cfg.DB, cfg.Logger)
	scholarshipRepo := db.NewScholarshipRepository(cfg.DB, cfg.Logger)

	// Initialize services
	locks := services.NewKeyLocker(cfg.Config.Features.EnableLocks)

	taskService := services.NewTaskService(services.TaskServiceConfig{
		Repository: taskRepo,
		Events:     eventRepo,
		Locks:      locks,
		Logger:     cfg.Logger,
		Clock:      cfg.Clock,
	})

	tracker := services.NewProgressTracker(services.ProgressTrackerConfig{
		Repository:      taskRepo,
		Events:          eventRepo,
		Locks:           locks,
		Logger:          cfg.Logger,
		Clock:           cfg.Clock,
		RecrawlInterval: engine.RecrawlInterval,
		LeaseTimeout:    engine.LeaseTimeout,
		ClaimBatchSize:  engine.ClaimBatchSize,
	})

	scholarshipService := services.NewScholarshipService(services.ScholarshipServiceConfig{
		Repository: scholarshipRepo,
		Tasks:      taskRepo,
		Logger:     cfg.Logger,
		Clock:      cfg.Clock,
	})

	aggregation := services.NewAggregationService(services.AggregationServiceConfig{
		Tasks:         taskRepo,
		Scholarships:  scholarshipRepo,
		Logger:        cfg.Logger,
		Clock:         cfg.Clock,
		StartedAt:     cfg.StartedAt,
		RateWindow:    engine.ProcessingRateWindow,
		ProgressLimit: engine.SnapshotProgressLimit,
	})

	ingestion := services.NewIngestionService(services.IngestionServiceConfig{
		Tasks:  taskService,
		Logger: cfg.Logger,
	})

	reclaimer := services.NewLeaseReclaimer(services.LeaseReclaimerConfig{
		Tracker:  tracker,
		Events:   eventRepo,
		Logger:   cfg.Logger,
		Clock:    cfg.Clock,
		Schedule: engine.ReclaimSchedule,
	})

	// Initialize handlers
	statusHandler := handlers.NewStatusHandler(aggregation, cfg.Logger, engine.StatusPushInterval)
	taskHandler := handlers.NewTaskHandler(taskService, ingestion, cfg.Logger)
	scholarshipHandler := handlers.NewScholarshipHandler(scholarshipService, cfg.Logger)
	workerHandler := handlers.NewWorkerHandler(tracker, scholarshipService, cfg.Logger)

	app.Get("/health", statusHandler.Health)
	if cfg.Config.Features.EnableMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Live status stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/status", websocket.New(statusHandler.Stream))

	api := app.Group("/api")
	api.Get("/status", statusHandler.GetStatus)

	// Scholarship routes (static paths before /:id)
	scholarships := api.Group("/scholarships")
	scholarships.Get("/", scholarshipHandler.List)
	scholarships.Get("/stats", scholarshipHandler.Stats)
	scholarships.Get("/export", scholarshipHandler.Export)
	scholarships.Get("/export/csv", scholarshipHandler.ExportCSV)
	scholarships.Get("/:id", scholarshipHandler.Get)

	// Task routes
	admin := httpmw.AdminAuth(cfg.Config)
	tasks := api.Group("/tasks")
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Get("/search", taskHandler.SearchTasks)
	tasks.Get("/failed", taskHandler.ListFailed)
	tasks.Post("/", admin, taskHandler.CreateTask)
	tasks.Post("/bulk", admin, taskHandler.BulkSubmit)
	tasks.Post("/upload-urls", admin, taskHandler.UploadURLs)
	tasks.Get("/:id/progress", taskHandler.GetProgress)
	tasks.Get("/:id/events", taskHandler.ListEvents)
	tasks.Post("/:id/retry", admin, taskHandler.RetryTask)
	tasks.Delete("/:id", admin, taskHandler.DeleteTask)

	// Worker routes (internal API for scraping workers)
	worker := api.Group("/worker", httpmw.WorkerAuth(cfg.Config))
	worker.Post("/tasks/claim-next", workerHandler.ClaimNext)
	worker.Post("/tasks/:id/claim", workerHandler.Claim)
	worker.Post("/tasks/:id/total", workerHandler.SetTotalLinks)
	worker.Post("/tasks/:id/advance", workerHandler.Advance)
	worker.Post("/tasks/:id/complete", workerHandler.Complete)
	worker.Post("/tasks/:id/fail", workerHandler.Fail)
	worker.Post("/tasks/:id/scholarships", workerHandler.RecordScholarship)

	return reclaimer
}
