package controllers

import (
	"encoding/json"
	"time"

	"verify-station/broadcaster"
	"verify-station/config"
	"verify-station/models"
	"verify-station/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BackupController struct {
	DB     *gorm.DB
	Events *broadcaster.Broadcaster

	jobs  *repositories.JobRepository
	scans *repositories.ScanRepository
}

func NewBackupController(db *gorm.DB, events *broadcaster.Broadcaster) *BackupController {
	return &BackupController{
		DB:     db,
		Events: events,
		jobs:   repositories.NewJobRepository(db),
		scans:  repositories.NewScanRepository(db),
	}
}

type backupScan struct {
	Barcode   string `json:"barcode"`
	Expected  string `json:"expected"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type backupJob struct {
	JobID            string       `json:"job_id"`
	ExpectedBarcode  string       `json:"expected_barcode"`
	PiecesPerShipper int          `json:"pieces_per_shipper"`
	TargetQuantity   int          `json:"target_quantity"`
	StartTime        string       `json:"start_time"`
	EndTime          *string      `json:"end_time"`
	IsActive         bool         `json:"is_active"`
	IsLocked         bool         `json:"is_locked"`
	PassCount        int          `json:"pass_count"`
	FailCount        int          `json:"fail_count"`
	TotalScans       int          `json:"total_scans"`
	TotalPieces      int          `json:"total_pieces"`
	RecentScans      []backupScan `json:"recent_scans"`
}

type backupState struct {
	ShiftStats *models.ShiftStats `json:"shift_stats"`
	ActiveJob  *backupJob         `json:"active_job"`
}

// Backup snapshots today's shift stats plus the active job and its full scan
// list as a downloadable JSON document.
func (c *BackupController) Backup(ctx *fiber.Ctx) error {
	shift, err := c.jobs.TodayShift()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	state := backupState{ShiftStats: shift}

	job, err := c.jobs.GetActiveJob()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if job != nil {
		var scans []models.Scan
		if err := c.DB.Where("job_id = ?", job.ID).Order("id ASC").Find(&scans).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		bj := backupJob{
			JobID:            job.JobID,
			ExpectedBarcode:  job.ExpectedBarcode,
			PiecesPerShipper: job.PiecesPerShipper,
			TargetQuantity:   job.TargetQuantity,
			StartTime:        job.StartTime.Format(time.RFC3339),
			IsActive:         job.IsActive,
			IsLocked:         job.IsLocked,
			PassCount:        job.CachedPassCount,
			FailCount:        job.CachedFailCount,
			TotalScans:       job.CachedTotalScans,
			TotalPieces:      job.TotalPieces(),
			RecentScans:      make([]backupScan, 0, len(scans)),
		}
		if job.EndTime != nil {
			endTime := job.EndTime.Format(time.RFC3339)
			bj.EndTime = &endTime
		}
		for _, s := range scans {
			bj.RecentScans = append(bj.RecentScans, backupScan{
				Barcode:   s.Barcode,
				Expected:  s.Expected,
				Status:    s.Status,
				Timestamp: s.Timestamp.Format(time.RFC3339),
			})
		}
		state.ActiveJob = &bj
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := "barcode_backup_" + time.Now().Format("20060102_150405") + ".json"
	ctx.Set("Content-Type", "application/json")
	ctx.Set("Content-Disposition", "attachment;filename="+filename)
	return ctx.Send(payload)
}

// Restore replaces all station data with a snapshot of the /api/backup shape.
// The wipe and the reload commit as one transaction; malformed input rolls
// everything back.
func (c *BackupController) Restore(ctx *fiber.Ctx) error {
	var state backupState
	if err := json.Unmarshal(ctx.Body(), &state); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		session := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := session.Delete(&models.Scan{}).Error; err != nil {
			return err
		}
		if err := session.Delete(&models.Job{}).Error; err != nil {
			return err
		}
		if err := session.Delete(&models.ShiftStats{}).Error; err != nil {
			return err
		}

		if state.ShiftStats != nil {
			shift := *state.ShiftStats
			shift.ID = 0
			if shift.Date == "" {
				shift.Date = models.Today()
			}
			if err := tx.Create(&shift).Error; err != nil {
				return err
			}
		}

		if state.ActiveJob != nil {
			bj := state.ActiveJob
			startTime, err := parseBackupTime(bj.StartTime)
			if err != nil {
				return err
			}

			job := models.Job{
				JobID:            bj.JobID,
				ExpectedBarcode:  bj.ExpectedBarcode,
				PiecesPerShipper: bj.PiecesPerShipper,
				TargetQuantity:   bj.TargetQuantity,
				StartTime:        startTime,
				IsActive:         bj.IsActive,
				IsLocked:         bj.IsLocked,
			}
			if bj.EndTime != nil {
				endTime, err := parseBackupTime(*bj.EndTime)
				if err != nil {
					return err
				}
				job.EndTime = &endTime
			}

			// Rebuild cached counters from the scan list itself so the
			// invariant holds no matter what the snapshot claims.
			for _, s := range bj.RecentScans {
				switch s.Status {
				case models.StatusPass:
					job.CachedPassCount++
				case models.StatusFail:
					job.CachedFailCount++
				}
				job.CachedTotalScans++
			}

			if err := tx.Create(&job).Error; err != nil {
				return err
			}
			for _, s := range bj.RecentScans {
				timestamp, err := parseBackupTime(s.Timestamp)
				if err != nil {
					return err
				}
				scan := models.Scan{
					JobID:     job.ID,
					Barcode:   s.Barcode,
					Expected:  s.Expected,
					Status:    s.Status,
					Timestamp: timestamp,
				}
				if err := tx.Create(&scan).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		config.GetLogger().Error("Restore failed, rolled back: " + err.Error())
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	config.GetLogger().Info("Restore complete")
	c.Events.Publish("restore_complete", fiber.Map{"success": true})
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func parseBackupTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
}
