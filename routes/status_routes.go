package routes

import (
	"verify-station/config"
	"verify-station/controllers"
	"verify-station/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupStatusRoutes(app *fiber.App, d *Deps) {
	statusController := controllers.NewStatusController(d.DB)

	api := app.Group(config.MAIN_ROUTES)
	api.Get("/status", statusController.Status)
	api.Get("/hourly_stats", statusController.HourlyStats)
	api.Post("/log_error", statusController.LogError)
	api.Post("/reconcile", middleware.SupervisorAuthMiddleware, statusController.Reconcile)
}
