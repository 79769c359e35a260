package handlers

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	service     *services.SyncService
	storeDriver string
}

func NewHealthHandler(service *services.SyncService, storeDriver string) *HealthHandler {
	return &HealthHandler{service: service, storeDriver: storeDriver}
}

// Check is a liveness probe and never touches the store.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports whether the store answers.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.service.Ping(c.UserContext()); err != nil {
		slog.Warn("readiness check failed", "op", "ready", "store", h.storeDriver, "error", err.Error())
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ReadyResponse{
			Status: "UNAVAILABLE",
			Store:  h.storeDriver,
		})
	}
	return c.JSON(dto.ReadyResponse{Status: "OK", Store: h.storeDriver})
}
