package controllers

import (
	"strconv"
	"time"

	"verify-station/apperr"
	"verify-station/config"
	"verify-station/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StatusController struct {
	DB *gorm.DB

	jobs  *repositories.JobRepository
	scans *repositories.ScanRepository
}

func NewStatusController(db *gorm.DB) *StatusController {
	return &StatusController{
		DB:    db,
		jobs:  repositories.NewJobRepository(db),
		scans: repositories.NewScanRepository(db),
	}
}

func (c *StatusController) Status(ctx *fiber.Ctx) error {
	job, err := c.jobs.GetActiveJob()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	shift, err := c.jobs.TodayShift()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var activeJob interface{}
	if job != nil {
		activeJob = buildJobRead(c.scans, job)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"active_job":   activeJob,
		"shift":        shift,
		"gpio_enabled": config.UseGPIO,
		"line_name":    config.LineName,
		"server_time":  time.Now().Format("15:04:05"),
	})
}

// HourlyStats reports today's per-clock-hour PASS counts for hours 8-20, with
// a running cumulative piece total, keyed by hour like the board expects.
func (c *StatusController) HourlyStats(ctx *fiber.Ctx) error {
	buckets, err := c.scans.HourlyStats()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := make(map[string]fiber.Map, len(buckets))
	for _, b := range buckets {
		out[strconv.Itoa(b.Hour)] = fiber.Map{
			"shippers":   b.Shippers,
			"pieces":     b.Pieces,
			"cumulative": b.Cumulative,
		}
	}
	return ctx.Status(fiber.StatusOK).JSON(out)
}

// Reconcile recomputes the cached job counters from the scan log. Explicit
// repair tool, supervisor-gated.
func (c *StatusController) Reconcile(ctx *fiber.Ctx) error {
	updated, err := c.jobs.ReconcileCounters()
	if err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "jobs_updated": updated})
}

// LogError records JavaScript errors reported by the kiosk front end.
func (c *StatusController) LogError(ctx *fiber.Ctx) error {
	var report struct {
		Error string `json:"error"`
		Stack string `json:"stack"`
	}
	if err := ctx.BodyParser(&report); err != nil {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "failed"})
	}
	if report.Error == "" {
		report.Error = "Unknown error"
	}
	config.GetLogger().WithField("stack", report.Stack).
		Error("Client-side error: " + report.Error)
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "logged"})
}
