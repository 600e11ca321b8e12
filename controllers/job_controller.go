package controllers

import (
	"strings"

	"verify-station/apperr"
	"verify-station/broadcaster"
	"verify-station/models"
	"verify-station/pinguard"
	"verify-station/repositories"
	"verify-station/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type JobController struct {
	DB        *gorm.DB
	Events    *broadcaster.Broadcaster
	Guard     *pinguard.Guard
	Indicator *services.Indicator
	Mailer    *services.Mailer

	jobs  *repositories.JobRepository
	scans *repositories.ScanRepository
}

func NewJobController(db *gorm.DB, events *broadcaster.Broadcaster, guard *pinguard.Guard,
	indicator *services.Indicator, mailer *services.Mailer) *JobController {
	return &JobController{
		DB:        db,
		Events:    events,
		Guard:     guard,
		Indicator: indicator,
		Mailer:    mailer,
		jobs:      repositories.NewJobRepository(db),
		scans:     repositories.NewScanRepository(db),
	}
}

// buildJobRead assembles the display snapshot, including the per-clock-hour
// pass counts the monitor board shows.
func buildJobRead(scans *repositories.ScanRepository, job *models.Job) models.JobRead {
	hour := timeNowHour()
	thisHour, _ := scans.ScansInHour(job.ID, hour)
	prevHour := 0
	if hour > 0 {
		prevHour, _ = scans.ScansInHour(job.ID, hour-1)
	}
	return models.NewJobRead(job, thisHour, prevHour)
}

func (c *JobController) StartJob(ctx *fiber.Ctx) error {
	var jobStartInput struct {
		JobID            string `json:"job_id" validate:"omitempty,max=100"`
		ExpectedBarcode  string `json:"expected_barcode" validate:"required,max=200"`
		PiecesPerShipper int    `json:"pieces_per_shipper" validate:"omitempty,min=1,max=10000"`
		TargetQuantity   int    `json:"target_quantity" validate:"omitempty,min=0,max=1000000"`
	}

	if err := ctx.BodyParser(&jobStartInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	jobStartInput.JobID = strings.TrimSpace(jobStartInput.JobID)
	jobStartInput.ExpectedBarcode = strings.TrimSpace(jobStartInput.ExpectedBarcode)

	if jobStartInput.ExpectedBarcode == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expected barcode is required"})
	}

	validate := validator.New()
	if err := validate.Struct(jobStartInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if containsUnsafeChars(jobStartInput.ExpectedBarcode) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Barcode contains invalid characters"})
	}
	if containsUnsafeChars(jobStartInput.JobID) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Job ID contains invalid characters"})
	}

	job, err := c.jobs.StartJob(repositories.StartJobInput{
		JobID:            jobStartInput.JobID,
		ExpectedBarcode:  jobStartInput.ExpectedBarcode,
		PiecesPerShipper: jobStartInput.PiecesPerShipper,
		TargetQuantity:   jobStartInput.TargetQuantity,
	})
	if err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	read := buildJobRead(c.scans, job)
	c.Events.Publish("job_started", read)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "job": read})
}

func (c *JobController) EndJob(ctx *fiber.Ctx) error {
	var endInput struct {
		Pin string `json:"pin"`
	}
	if err := ctx.BodyParser(&endInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Guard.Verify(strings.TrimSpace(endInput.Pin), ctx.IP()); err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	job, shift, err := c.jobs.EndJob()
	if err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	c.Indicator.AllOff()

	summary := models.NewJobSummary(job)
	c.Mailer.SendJobSummaryAsync(summary)

	read := buildJobRead(c.scans, job)
	c.Events.Publish("job_ended", fiber.Map{"job": read, "shift": shift})

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "summary": summary})
}

func (c *JobController) GetJob(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	job, err := c.jobs.GetJob(int64(id))
	if err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	scans, err := c.scans.RecentScans(job.ID, 100)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"job":   buildJobRead(c.scans, job),
		"scans": models.NewScanReads(scans),
	})
}
