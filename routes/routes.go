package routes

import (
	"verify-station/broadcaster"
	"verify-station/pinguard"
	"verify-station/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps holds the shared singletons the route groups wire into controllers.
type Deps struct {
	DB        *gorm.DB
	Events    *broadcaster.Broadcaster
	Guard     *pinguard.Guard
	Indicator *services.Indicator
	Mailer    *services.Mailer
}

func Setup(app *fiber.App, d *Deps) {
	SetupJobRoutes(app, d)
	SetupScanRoutes(app, d)
	SetupStatusRoutes(app, d)
	SetupEventRoutes(app, d)
	SetupExportRoutes(app, d)
}
