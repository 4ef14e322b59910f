package handlers

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/transport/http/dto"
)

type ScholarshipHandler struct {
	service ports.ScholarshipService
	logger  *logger.Logger
}

func NewScholarshipHandler(service ports.ScholarshipService, logger *logger.Logger) *ScholarshipHandler {
	return &ScholarshipHandler{service: service, logger: logger}
}

func (h *ScholarshipHandler) List(c *fiber.Ctx) error {
	filter, details := h.parseFilter(c)
	if len(details) > 0 {
		return badRequest(c, "invalid query parameters", details...)
	}

	items, err := h.service.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.logger, "scholarships_list", err)
	}
	return c.JSON(dto.ScholarshipsToResponse(items))
}

func (h *ScholarshipHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "invalid scholarship id")
	}

	item, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, "scholarship_get", err)
	}
	return c.JSON(dto.ScholarshipToResponse(item))
}

func (h *ScholarshipHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return respondError(c, h.logger, "scholarship_stats", err)
	}
	return c.JSON(dto.StatsToResponse(stats))
}

func (h *ScholarshipHandler) Export(c *fiber.Ctx) error {
	start, err := queryDate(c, "start_date")
	if err != nil {
		return badRequest(c, "invalid start_date")
	}
	end, err := queryDate(c, "end_date")
	if err != nil {
		return badRequest(c, "invalid end_date")
	}

	items, err := h.service.Export(c.Context(), start, end)
	if err != nil {
		return respondError(c, h.logger, "scholarship_export", err)
	}
	return c.JSON(dto.ScholarshipsToResponse(items))
}

func (h *ScholarshipHandler) ExportCSV(c *fiber.Ctx) error {
	start, err := queryDate(c, "start_date")
	if err != nil {
		return badRequest(c, "invalid start_date")
	}
	end, err := queryDate(c, "end_date")
	if err != nil {
		return badRequest(c, "invalid end_date")
	}

	var buf bytes.Buffer
	rows, err := h.service.ExportCSV(c.Context(), &buf, start, end)
	if err != nil {
		return respondError(c, h.logger, "scholarship_export_csv", err)
	}

	h.logger.Infow("scholarship_export_csv_request", "rows", rows)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="scholarships_export.csv"`)
	return c.Send(buf.Bytes())
}

func (h *ScholarshipHandler) parseFilter(c *fiber.Ctx) (ports.ScholarshipFilter, []string) {
	var details []string
	filter := ports.ScholarshipFilter{
		FieldOfStudy: c.Query("field_of_study"),
		LevelOfStudy: c.Query("level_of_study"),
		SourceURL:    c.Query("source_url"),
	}

	var err error
	if filter.Skip, err = queryInt(c, "skip", 0); err != nil || filter.Skip < 0 {
		details = append(details, "skip must be a non-negative integer")
	}
	if filter.Limit, err = queryInt(c, "limit", 100); err != nil || filter.Limit < 1 || filter.Limit > 1000 {
		details = append(details, "limit must be an integer between 1 and 1000")
	}

	minConfidence, err := queryFloat(c, "min_confidence")
	switch {
	case err != nil:
		details = append(details, "min_confidence must be a number")
	case minConfidence != nil && (*minConfidence < 0 || *minConfidence > 1):
		details = append(details, "min_confidence must be between 0 and 1")
	case minConfidence != nil:
		filter.MinConfidence = *minConfidence
	}

	if filter.MinAmount, err = queryFloat(c, "min_amount"); err != nil {
		details = append(details, "min_amount must be a number")
	}
	if filter.MaxAmount, err = queryFloat(c, "max_amount"); err != nil {
		details = append(details, "max_amount must be a number")
	}
	if filter.DeadlineAfter, err = queryDate(c, "deadline_after"); err != nil {
		details = append(details, "deadline_after must be a date")
	}

	if raw := c.Query("task_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			details = append(details, "task_id must be an integer")
		} else {
			taskID := uint(id)
			filter.TaskID = &taskID
		}
	}

	return filter, details
}
