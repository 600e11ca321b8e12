package controllers

import (
	"strings"

	"verify-station/apperr"
	"verify-station/config"
	"verify-station/middleware"
	"verify-station/pinguard"
	"verify-station/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PinController struct {
	DB    *gorm.DB
	Guard *pinguard.Guard

	jobs *repositories.JobRepository
}

func NewPinController(db *gorm.DB, guard *pinguard.Guard) *PinController {
	return &PinController{
		DB:    db,
		Guard: guard,
		jobs:  repositories.NewJobRepository(db),
	}
}

// VerifyPIN checks the supervisor PIN. A successful verification also clears
// a line lock on the active job (the only way a lock clears) and returns a
// short-lived token for the supervisor-gated endpoints.
func (c *PinController) VerifyPIN(ctx *fiber.Ctx) error {
	var pinInput struct {
		Pin string `json:"pin"`
	}
	if err := ctx.BodyParser(&pinInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Guard.Verify(strings.TrimSpace(pinInput.Pin), ctx.IP()); err != nil {
		return ctx.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
	}

	job, err := c.jobs.GetActiveJob()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if job != nil && job.IsLocked {
		if err := c.jobs.SetLocked(job.ID, false); err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		config.GetLogger().WithField("job_id", job.JobID).Info("Line unlocked by supervisor")
	}

	token, err := middleware.IssueSupervisorToken()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "token": token})
}
