package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/stocksync/internal/config"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/stocksync/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	syncHandler *handlers.SyncHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// Probes: no auth, no rate limit
	api.Get("/health", healthHandler.Check)
	api.Get("/ready", healthHandler.Ready)

	// Sync endpoints. Middleware is attached per route so the probes above
	// stay outside it.
	guards := []fiber.Handler{}
	if cfg.RateLimitPerMinute > 0 {
		guards = append(guards, limiter.New(limiter.Config{
			Max:               cfg.RateLimitPerMinute,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
					Error: true, Message: "Too many requests",
				})
			},
		}))
	}
	guards = append(guards, middleware.JWTProtected(cfg))

	guarded := func(h fiber.Handler) []fiber.Handler {
		chain := make([]fiber.Handler, 0, len(guards)+1)
		chain = append(chain, guards...)
		return append(chain, h)
	}

	api.Post("/sync", guarded(syncHandler.Sync)...)
	api.Get("/snapshot/:userId", guarded(syncHandler.Snapshot)...)
	api.Get("/updates/:userId", guarded(syncHandler.Updates)...)
}
