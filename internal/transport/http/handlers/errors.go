package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
	"github.com/striveopps/backend/internal/transport/http/dto"
)

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInvalidState, domain.KindDuplicateURL:
		return fiber.StatusConflict
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindStorageUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError maps a service error onto its HTTP status and logs it under
// the given event prefix.
func respondError(c *fiber.Ctx, log *logger.Logger, event string, err error) error {
	kind := domain.KindOf(err)
	status := statusForKind(kind)
	metrics.RecordError(event, string(kind))

	message := err.Error()
	switch status {
	case fiber.StatusServiceUnavailable:
		log.Errorw(event+"_failed", "kind", kind, "error", err)
		message = "storage unavailable"
	case fiber.StatusInternalServerError:
		log.Errorw(event+"_failed", "kind", kind, "error", err)
		message = "internal server error"
	default:
		log.Warnw(event+"_rejected", "kind", kind, "error", err)
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error: message,
		Kind:  string(kind),
	})
}

func badRequest(c *fiber.Ctx, message string, details ...string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   message,
		Kind:    string(domain.KindValidation),
		Details: details,
	})
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt returns def when key is absent.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
