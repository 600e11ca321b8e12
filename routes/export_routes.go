package routes

import (
	"verify-station/config"
	"verify-station/controllers"
	"verify-station/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupExportRoutes(app *fiber.App, d *Deps) {
	exportController := controllers.NewExportController(d.DB)
	backupController := controllers.NewBackupController(d.DB, d.Events)

	api := app.Group(config.MAIN_ROUTES)
	api.Get("/export_csv", exportController.ExportCSV)
	api.Get("/export_xlsx", exportController.ExportXLSX)
	api.Get("/backup", backupController.Backup)
	api.Post("/restore", middleware.SupervisorAuthMiddleware, backupController.Restore)
}
