package routes

import (
	"verify-station/config"
	"verify-station/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupJobRoutes(app *fiber.App, d *Deps) {
	jobController := controllers.NewJobController(d.DB, d.Events, d.Guard, d.Indicator, d.Mailer)
	pinController := controllers.NewPinController(d.DB, d.Guard)

	api := app.Group(config.MAIN_ROUTES)
	api.Post("/job/start", jobController.StartJob)
	api.Post("/job/end", jobController.EndJob)
	api.Get("/job/:id", jobController.GetJob)
	api.Post("/verify_pin", pinController.VerifyPIN)
}
