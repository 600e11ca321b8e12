package repositories

import (
	"errors"
	"time"

	"verify-station/apperr"
	"verify-station/config"
	"verify-station/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ScanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// RecentScanLimit is how many scans ride along with each scan response and
// broadcast event.
const RecentScanLimit = 8

// ProcessScan classifies barcode against the active job and persists the
// outcome. The scan insert and the counter increments commit as one
// transaction; the increments are computed in SQL so a concurrent scan can
// never base them on a stale read. With lockLine enabled a FAIL also sets the
// line lock inside the same transaction.
func (r *ScanRepository) ProcessScan(barcode string, lockLine bool) (*models.Scan, *models.Job, error) {
	var (
		scan models.Scan
		job  models.Job
	)
	err := withRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			err := tx.Where("is_active = ?", true).First(&job).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.InvalidState, "No active job")
			}
			if err != nil {
				return err
			}

			if job.IsLocked {
				return apperr.New(apperr.Locked,
					"Line is locked after a failed scan. Supervisor unlock required.")
			}

			status := models.StatusFail
			if barcode == job.ExpectedBarcode {
				status = models.StatusPass
			}

			scan = models.Scan{
				JobID:     job.ID,
				Barcode:   barcode,
				Expected:  job.ExpectedBarcode,
				Status:    status,
				Timestamp: time.Now(),
			}
			if err := tx.Create(&scan).Error; err != nil {
				return err
			}

			updates := map[string]interface{}{
				"cached_total_scans": gorm.Expr("cached_total_scans + 1"),
			}
			if status == models.StatusPass {
				updates["cached_pass_count"] = gorm.Expr("cached_pass_count + 1")
			} else {
				updates["cached_fail_count"] = gorm.Expr("cached_fail_count + 1")
				if lockLine {
					updates["is_locked"] = true
				}
			}
			if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).
				Updates(updates).Error; err != nil {
				return err
			}

			// Reload so the response carries the committed counters.
			return tx.Where("id = ?", job.ID).First(&job).Error
		})
	})
	if err != nil {
		return nil, nil, err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"job_id": job.JobID,
		"status": scan.Status,
	}).Info("Scan processed")
	return &scan, &job, nil
}

// RecentScans returns the newest scans for a job, persisted order
// authoritative (insertion id, not wall clock).
func (r *ScanRepository) RecentScans(jobID int64, limit int) ([]models.Scan, error) {
	var scans []models.Scan
	err := r.db.Where("job_id = ?", jobID).
		Order("id DESC").Limit(limit).Find(&scans).Error
	return scans, err
}

// ScansInHour counts a job's PASS scans within one clock hour of today.
func (r *ScanRepository) ScansInHour(jobID int64, hour int) (int, error) {
	if hour < 0 || hour > 23 {
		return 0, nil
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	end := start.Add(time.Hour)

	var count int64
	err := r.db.Model(&models.Scan{}).
		Where("job_id = ? AND status = ?", jobID, models.StatusPass).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Count(&count).Error
	return int(count), err
}

// HourRange is the production window shown on the hourly board.
const (
	HourRangeStart = 8
	HourRangeEnd   = 20
)

type HourlyBucket struct {
	Hour       int `json:"hour"`
	Shippers   int `json:"shippers"`
	Pieces     int `json:"pieces"`
	Cumulative int `json:"cumulative"`
}

// HourlyStats buckets today's PASS scans into clock hours 8-20 with a running
// piece total. Hour extraction is done in Go because it differs per driver.
func (r *ScanRepository) HourlyStats() ([]HourlyBucket, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var rows []struct {
		Timestamp time.Time
		Pieces    int
	}
	err := r.db.Table("scans").
		Select("scans.timestamp, jobs.pieces_per_shipper AS pieces").
		Joins("JOIN jobs ON jobs.id = scans.job_id").
		Where("scans.status = ? AND scans.timestamp >= ?", models.StatusPass, startOfDay).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]HourlyBucket, HourRangeEnd-HourRangeStart+1)
	for i := range buckets {
		buckets[i].Hour = HourRangeStart + i
	}

	for _, row := range rows {
		h := row.Timestamp.Hour()
		if h >= HourRangeStart && h <= HourRangeEnd {
			buckets[h-HourRangeStart].Shippers++
			buckets[h-HourRangeStart].Pieces += row.Pieces
		}
	}

	running := 0
	for i := range buckets {
		running += buckets[i].Pieces
		buckets[i].Cumulative = running
	}
	return buckets, nil
}
