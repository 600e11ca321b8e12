package routes

import (
	"verify-station/config"
	"verify-station/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupScanRoutes(app *fiber.App, d *Deps) {
	scanController := controllers.NewScanController(d.DB, d.Events, d.Indicator)

	api := app.Group(config.MAIN_ROUTES)
	api.Post("/scan", scanController.Scan)
}
