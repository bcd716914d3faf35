package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"locar-esign/internal/config"
	"locar-esign/internal/delivery/http/handler"
)

type Router struct {
	app            *fiber.App
	config         *config.Config
	rentalHandler  *handler.RentalHandler
	webhookHandler *handler.WebhookHandler
	healthHandler  *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	rentalHandler *handler.RentalHandler,
	webhookHandler *handler.WebhookHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:            app,
		config:         cfg,
		rentalHandler:  rentalHandler,
		webhookHandler: webhookHandler,
		healthHandler:  healthHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// Webhook route (at root level for external callbacks)
	r.app.Post("/webhook/assinafy", r.webhookHandler.AssinafyCallback)

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		rentals := api.Group("/rentals")
		{
			rentals.Post("", r.rentalHandler.Create)
			rentals.Get("/:id", r.rentalHandler.Get)
			rentals.Post("/:id/contract", r.rentalHandler.GenerateContract)
			rentals.Post("/:id/signature", r.rentalHandler.SubmitSignature)
		}
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}
