package routes

import (
	"verify-station/config"
	"verify-station/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, d *Deps) {
	eventController := controllers.NewEventController(d.Events)

	api := app.Group(config.MAIN_ROUTES)
	api.Get("/events", eventController.Stream)
}
