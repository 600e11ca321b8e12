package controllers

import (
	"strings"

	"verify-station/apperr"
	"verify-station/broadcaster"
	"verify-station/config"
	"verify-station/models"
	"verify-station/repositories"
	"verify-station/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ScanController struct {
	DB        *gorm.DB
	Events    *broadcaster.Broadcaster
	Indicator *services.Indicator

	scans *repositories.ScanRepository
}

func NewScanController(db *gorm.DB, events *broadcaster.Broadcaster,
	indicator *services.Indicator) *ScanController {
	return &ScanController{
		DB:        db,
		Events:    events,
		Indicator: indicator,
		scans:     repositories.NewScanRepository(db),
	}
}

func (c *ScanController) Scan(ctx *fiber.Ctx) error {
	var scanInput struct {
		Barcode string `json:"barcode"`
	}
	if err := ctx.BodyParser(&scanInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	barcode := strings.TrimSpace(scanInput.Barcode)
	if barcode == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No barcode provided"})
	}
	if len(barcode) > 200 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Barcode must be 200 characters or less"})
	}

	scan, job, err := c.scans.ProcessScan(barcode, config.LineLock)
	if err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	// Hardware feedback is fire-and-forget, it never delays the response.
	c.Indicator.Notify(scan.Status)

	recent, err := c.scans.RecentScans(job.ID, repositories.RecentScanLimit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	response := fiber.Map{
		"scan":         models.NewScanRead(scan),
		"job":          buildJobRead(c.scans, job),
		"recent_scans": models.NewScanReads(recent),
	}
	c.Events.Publish("scan", response)

	return ctx.Status(fiber.StatusOK).JSON(response)
}
