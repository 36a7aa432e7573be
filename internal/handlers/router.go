package handlers

import (
	"fieldops/internal/app"
	"fieldops/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.RequestContext())

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewShiftHandler(*app, api).Register()

	return nil
}
