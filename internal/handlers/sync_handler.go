package handlers

import (
	"net/url"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	service *services.SyncService
}

func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	var req dto.SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	userID, err := services.ValidateUserID(req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if !middleware.OwnsUser(c, userID) {
		return forbidden(c)
	}

	resp, err := h.service.Sync(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *SyncHandler) Snapshot(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	if !middleware.OwnsUser(c, userID) {
		return forbidden(c)
	}

	snap, err := h.service.GetSnapshot(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

func (h *SyncHandler) Updates(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return respondError(c, err)
	}
	if !middleware.OwnsUser(c, userID) {
		return forbidden(c)
	}

	since := services.ParseSince(c.Query("since"))
	updates, err := h.service.CheckUpdates(c.UserContext(), userID, since)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updates)
}

// userIDParam decodes the :userId segment. Fiber leaves route params
// percent-encoded, while the sync body carries the id verbatim.
func userIDParam(c *fiber.Ctx) (string, error) {
	raw, err := url.PathUnescape(c.Params("userId"))
	if err != nil {
		return "", &services.ValidationError{Field: "userId", Message: "is not a valid path segment"}
	}
	return services.ValidateUserID(raw)
}
