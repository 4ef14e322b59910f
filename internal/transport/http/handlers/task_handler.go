package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/core/services"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/transport/http/dto"
)

const maxUploadBytes = 5 * 1024 * 1024

type TaskHandler struct {
	tasks     ports.TaskService
	ingestion ports.IngestionService
	logger    *logger.Logger
}

func NewTaskHandler(tasks ports.TaskService, ingestion ports.IngestionService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, ingestion: ingestion, logger: logger}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_create_body_parse_failed", "error", err)
		return badRequest(c, "invalid request body")
	}
	if details := req.Validate(); len(details) > 0 {
		return badRequest(c, "validation failed", details...)
	}

	h.logger.Infow("task_create_request", "url", req.URL)
	task, err := h.tasks.CreateTask(c.Context(), req.URL)
	if err != nil {
		return respondError(c, h.logger, "task_create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	skip, limit, ok := h.page(c)
	if !ok {
		return badRequest(c, "skip and limit must be integers")
	}

	filter := ports.TaskFilter{
		Status: domain.TaskStatus(c.Query("status")),
		Skip:   skip,
		Limit:  limit,
	}
	tasks, err := h.tasks.ListTasks(c.Context(), filter)
	if err != nil {
		return respondError(c, h.logger, "tasks_list", err)
	}
	return c.JSON(dto.TasksToResponse(tasks))
}

func (h *TaskHandler) ListFailed(c *fiber.Ctx) error {
	skip, limit, ok := h.page(c)
	if !ok {
		return badRequest(c, "skip and limit must be integers")
	}

	tasks, err := h.tasks.ListFailed(c.Context(), skip, limit)
	if err != nil {
		return respondError(c, h.logger, "tasks_failed_list", err)
	}
	return c.JSON(dto.TasksToResponse(tasks))
}

func (h *TaskHandler) SearchTasks(c *fiber.Ctx) error {
	query := c.Query("query")
	status := c.Query("status")

	tasks, err := h.tasks.SearchTasks(c.Context(), query, domain.TaskStatus(status))
	if err != nil {
		return respondError(c, h.logger, "tasks_search", err)
	}

	resp := dto.SearchTasksResponse{
		Query:   query,
		Count:   len(tasks),
		Results: dto.TasksToResponse(tasks),
	}
	if status != "" {
		resp.StatusFilter = &status
	}
	return c.JSON(resp)
}

func (h *TaskHandler) GetProgress(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	task, err := h.tasks.GetTask(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, "task_progress", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) ListEvents(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	events, err := h.tasks.ListEvents(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, "task_events", err)
	}
	return c.JSON(events)
}

func (h *TaskHandler) RetryTask(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	h.logger.Infow("task_retry_request", "id", id)
	task, err := h.tasks.RetryTask(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, "task_retry", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	h.logger.Infow("task_delete_request", "id", id)
	if _, err := h.tasks.DeleteTask(c.Context(), id); err != nil {
		return respondError(c, h.logger, "task_delete", err)
	}
	return c.JSON(dto.DeleteTaskResponse{
		Message: "task deleted",
		TaskID:  id,
	})
}

func (h *TaskHandler) BulkSubmit(c *fiber.Ctx) error {
	var req dto.BulkSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("tasks_bulk_body_parse_failed", "error", err)
		return badRequest(c, "invalid request body")
	}
	if details := req.Validate(); len(details) > 0 {
		return badRequest(c, "validation failed", details...)
	}

	h.logger.Infow("tasks_bulk_request", "count", len(req.URLs))
	result, err := h.ingestion.BulkSubmit(c.Context(), req.URLs)
	if err != nil {
		return respondError(c, h.logger, "tasks_bulk", err)
	}
	return c.JSON(dto.SubmissionToResponse(result))
}

func (h *TaskHandler) UploadURLs(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	format, err := services.ParseFileFormat(header.Filename)
	if err != nil {
		return respondError(c, h.logger, "tasks_upload", err)
	}

	f, err := header.Open()
	if err != nil {
		return badRequest(c, "unable to read uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return badRequest(c, "unable to read uploaded file")
	}
	if len(content) > maxUploadBytes {
		return badRequest(c, "file too large")
	}

	h.logger.Infow("tasks_upload_request", "filename", header.Filename, "size", len(content))
	result, err := h.ingestion.SubmitFromFile(c.Context(), content, format)
	if err != nil {
		return respondError(c, h.logger, "tasks_upload", err)
	}
	if len(result.Entries) == 0 {
		return badRequest(c, "no URLs found in file")
	}
	return c.JSON(dto.FileSubmissionToResponse(result))
}

func (h *TaskHandler) page(c *fiber.Ctx) (int, int, bool) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return 0, 0, false
	}
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		return 0, 0, false
	}
	return skip, limit, true
}
