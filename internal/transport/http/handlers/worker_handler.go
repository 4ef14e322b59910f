package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/transport/http/dto"
)

// WorkerHandler exposes the progress tracker to the external scraping workers.
type WorkerHandler struct {
	tracker      ports.ProgressTracker
	scholarships ports.ScholarshipService
	logger       *logger.Logger
}

func NewWorkerHandler(tracker ports.ProgressTracker, scholarships ports.ScholarshipService, logger *logger.Logger) *WorkerHandler {
	return &WorkerHandler{tracker: tracker, scholarships: scholarships, logger: logger}
}

func (h *WorkerHandler) Claim(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	task, err := h.tracker.Claim(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, "worker_claim", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *WorkerHandler) ClaimNext(c *fiber.Ctx) error {
	task, err := h.tracker.ClaimNext(c.Context())
	if err != nil {
		return respondError(c, h.logger, "worker_claim_next", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *WorkerHandler) SetTotalLinks(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	var req dto.SetTotalLinksRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if details := req.Validate(); len(details) > 0 {
		return badRequest(c, "validation failed", details...)
	}

	task, err := h.tracker.SetTotalLinks(c.Context(), id, *req.TotalLinks)
	if err != nil {
		return respondError(c, h.logger, "worker_set_total", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *WorkerHandler) Advance(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	var req dto.AdvanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if details := req.Validate(); len(details) > 0 {
		return badRequest(c, "validation failed", details...)
	}

	task, err := h.tracker.Advance(c.Context(), id, req.ProcessedDelta, req.FoundDelta)
	if err != nil {
		return respondError(c, h.logger, "worker_advance", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *WorkerHandler) Complete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	task, err := h.tracker.Complete(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, "worker_complete", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *WorkerHandler) Fail(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	var req dto.FailTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if details := req.Validate(); len(details) > 0 {
		return badRequest(c, "validation failed", details...)
	}

	task, err := h.tracker.Fail(c.Context(), id, req.ErrorMessage)
	if err != nil {
		return respondError(c, h.logger, "worker_fail", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *WorkerHandler) RecordScholarship(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid task id")
	}

	var req dto.RecordScholarshipRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("worker_record_body_parse_failed", "task_id", id, "error", err)
		return badRequest(c, "invalid request body")
	}
	if details := req.Validate(); len(details) > 0 {
		return badRequest(c, "validation failed", details...)
	}

	item, err := h.scholarships.Record(c.Context(), req.ToInput(id))
	if err != nil {
		return respondError(c, h.logger, "worker_record", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ScholarshipToResponse(item))
}
