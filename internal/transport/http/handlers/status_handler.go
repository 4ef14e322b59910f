package handlers

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/transport/http/dto"
)

const snapshotTimeout = 10 * time.Second

type StatusHandler struct {
	service      ports.AggregationService
	logger       *logger.Logger
	pushInterval time.Duration
}

func NewStatusHandler(service ports.AggregationService, logger *logger.Logger, pushInterval time.Duration) *StatusHandler {
	if pushInterval <= 0 {
		pushInterval = 30 * time.Second
	}
	return &StatusHandler{service: service, logger: logger, pushInterval: pushInterval}
}

func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	snapshot, err := h.service.Snapshot(c.Context())
	if err != nil {
		return respondError(c, h.logger, "status", err)
	}
	return c.JSON(dto.SnapshotToResponse(snapshot))
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{Status: "ok"})
}

// Stream pushes a fresh snapshot immediately and then on every tick until
// the client goes away.
func (h *StatusHandler) Stream(c *websocket.Conn) {
	h.logger.Infow("status_stream_open", "remote", c.RemoteAddr().String())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	for {
		if err := h.push(c); err != nil {
			h.logger.Warnw("status_stream_push_failed", "error", err)
			break
		}
		select {
		case <-closed:
			h.logger.Infow("status_stream_closed")
			return
		case <-ticker.C:
		}
	}
	c.Close()
}

func (h *StatusHandler) push(c *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return err
	}
	return c.WriteJSON(dto.SnapshotToResponse(snapshot))
}
