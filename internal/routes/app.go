package routes

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/config"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/middleware"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the fiber app with global middleware and all routes mounted.
func NewApp(cfg *config.Config, syncHandler *handlers.SyncHandler, healthHandler *handlers.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	Setup(app, cfg, syncHandler, healthHandler)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// 5xx detail stays server side
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
