package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto status codes. Store detail stays in
// the logs and Sentry; the client only sees a generic message for 5xx.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: validationErr.Error(),
		})
	}

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	var syncErr *services.SyncFailure
	if errors.As(err, &syncErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Sync failed, no changes were saved. Retry the full batch",
		})
	}

	var readErr *services.ReadFailure
	if errors.As(err, &readErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read data",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Error: true, Message: "Token does not grant access to this user",
	})
}
