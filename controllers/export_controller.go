package controllers

import (
	"bytes"
	"encoding/csv"
	"time"

	"verify-station/models"
	"verify-station/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// exportWindow is how far back the history exports reach.
const exportWindow = 120 * 24 * time.Hour

var exportHeader = []string{
	"Job ID", "Start Time", "Expected Barcode", "Scan Timestamp", "Scanned Barcode", "Status",
}

type ExportController struct {
	DB *gorm.DB

	jobs *repositories.JobRepository
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{
		DB:   db,
		jobs: repositories.NewJobRepository(db),
	}
}

// exportRows flattens jobs and their scans into spreadsheet rows. A job with
// no scans still gets one row so it shows up in the history.
func exportRows(jobs []models.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		if len(job.Scans) == 0 {
			rows = append(rows, []string{
				job.JobID,
				job.StartTime.Format("2006-01-02 15:04:05"),
				job.ExpectedBarcode,
				"NO SCANS", "", "",
			})
			continue
		}
		for _, scan := range job.Scans {
			rows = append(rows, []string{
				job.JobID,
				job.StartTime.Format("2006-01-02 15:04:05"),
				job.ExpectedBarcode,
				scan.Timestamp.Format("2006-01-02 15:04:05"),
				scan.Barcode,
				scan.Status,
			})
		}
	}
	return rows
}

func (c *ExportController) ExportCSV(ctx *fiber.Ctx) error {
	jobs, err := c.jobs.JobsSince(time.Now().Add(-exportWindow))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	for _, row := range exportRows(jobs) {
		if err := writer.Write(row); err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := "barcode_history_120d_" + time.Now().Format("20060102_150405") + ".csv"
	ctx.Set("Content-Type", "text/csv")
	ctx.Set("Content-Disposition", "attachment; filename="+filename)
	return ctx.Send(buf.Bytes())
}

func (c *ExportController) ExportXLSX(ctx *fiber.Ctx) error {
	jobs, err := c.jobs.JobsSince(time.Now().Add(-exportWindow))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Scans"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for rowIdx, row := range exportRows(jobs) {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := "barcode_history_120d_" + time.Now().Format("20060102_150405") + ".xlsx"
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", "attachment; filename="+filename)
	return ctx.Send(buf.Bytes())
}
