package repositories

import (
	"errors"
	"time"

	"verify-station/apperr"
	"verify-station/config"
	"verify-station/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

type StartJobInput struct {
	JobID            string
	ExpectedBarcode  string
	PiecesPerShipper int
	TargetQuantity   int
}

// GetActiveJob returns the active job, or nil when the line is idle.
func (r *JobRepository) GetActiveJob() (*models.Job, error) {
	var job models.Job
	err := r.db.Where("is_active = ?", true).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetJob(id int64) (*models.Job, error) {
	var job models.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Job not found")
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// StartJob creates a new active job. The no-active-job check and the insert
// run as one atomic unit: in-process via lifecycleMu, across processes via a
// FOR UPDATE lock on the active row where the driver supports it.
func (r *JobRepository) StartJob(in StartJobInput) (*models.Job, error) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()

	if in.JobID == "" {
		in.JobID = time.Now().Format("JOB_20060102_150405")
	}
	if in.PiecesPerShipper < 1 {
		in.PiecesPerShipper = 1
	}
	if in.TargetQuantity < 0 {
		in.TargetQuantity = 0
	}

	var job *models.Job
	err := withRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			query := tx.Where("is_active = ?", true)
			if tx.Dialector.Name() != "sqlite" {
				query = query.Clauses(clause.Locking{Strength: "UPDATE"})
			}

			var active models.Job
			err := query.First(&active).Error
			if err == nil {
				return apperr.New(apperr.Conflict,
					"A job is already active: "+active.JobID+". End it first.")
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			job = &models.Job{
				JobID:            in.JobID,
				ExpectedBarcode:  in.ExpectedBarcode,
				PiecesPerShipper: in.PiecesPerShipper,
				TargetQuantity:   in.TargetQuantity,
				StartTime:        time.Now(),
				IsActive:         true,
			}
			return tx.Create(job).Error
		})
	})
	if err != nil {
		return nil, err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"job_id":  job.JobID,
		"id":      job.ID,
		"barcode": job.ExpectedBarcode,
	}).Info("Job started")
	return job, nil
}

// EndJob deactivates the active job and folds its totals into today's shift
// row in one transaction. PIN verification happens at the controller, before
// this is called.
func (r *JobRepository) EndJob() (*models.Job, *models.ShiftStats, error) {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()

	var (
		job   models.Job
		shift models.ShiftStats
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

			now := time.Now()
			if err := tx.Model(&job).Updates(map[string]interface{}{
				"is_active": false,
				"end_time":  now,
			}).Error; err != nil {
				return err
			}
			job.IsActive = false
			job.EndTime = &now

			s, err := getOrCreateShift(tx, now.Format(models.ShiftDateLayout))
			if err != nil {
				return err
			}

			if err := tx.Model(s).Updates(map[string]interface{}{
				"total_shippers": gorm.Expr("total_shippers + ?", job.CachedTotalScans),
				"total_pieces":   gorm.Expr("total_pieces + ?", job.TotalPieces()),
				"total_pass":     gorm.Expr("total_pass + ?", job.CachedPassCount),
				"total_fail":     gorm.Expr("total_fail + ?", job.CachedFailCount),
				"jobs_completed": gorm.Expr("jobs_completed + 1"),
			}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", s.ID).First(&shift).Error
		})
	})
	if err != nil {
		return nil, nil, err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"job_id":    job.JobID,
		"scans":     job.CachedTotalScans,
		"pass_rate": job.PassRate(),
	}).Info("Job ended")
	return &job, &shift, nil
}

func getOrCreateShift(tx *gorm.DB, date string) (*models.ShiftStats, error) {
	var shift models.ShiftStats
	err := tx.Where("date = ?", date).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		shift = models.ShiftStats{Date: date}
		if err := tx.Create(&shift).Error; err != nil {
			return nil, err
		}
		return &shift, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// TodayShift returns today's aggregate row, a zero row if none exists yet.
func (r *JobRepository) TodayShift() (*models.ShiftStats, error) {
	var shift models.ShiftStats
	err := r.db.Where("date = ?", models.Today()).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ShiftStats{Date: models.Today()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// EnsureTodayShift creates today's shift row at startup so status reads never
// race its lazy creation.
func (r *JobRepository) EnsureTodayShift() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		_, err := getOrCreateShift(tx, models.Today())
		return err
	})
}

// SetLocked sets or clears the line lock on a job.
func (r *JobRepository) SetLocked(jobID int64, locked bool) error {
	return r.db.Model(&models.Job{}).Where("id = ?", jobID).
		Update("is_locked", locked).Error
}

// JobsSince returns jobs started on or after cutoff, newest first, scans
// loaded in insertion order. Used by the export endpoints.
func (r *JobRepository) JobsSince(cutoff time.Time) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Where("start_time >= ?", cutoff).
		Order("start_time DESC").
		Preload("Scans", func(db *gorm.DB) *gorm.DB {
			return db.Order("scans.id ASC")
		}).
		Find(&jobs).Error
	return jobs, err
}

// ReconcileCounters recomputes every job's cached counters from the scans
// table. Repair tool for drift; exposed as an explicit operation, never run
// implicitly.
func (r *JobRepository) ReconcileCounters() (int64, error) {
	result := r.db.Exec(`
		UPDATE jobs SET
			cached_pass_count  = (SELECT COUNT(*) FROM scans WHERE scans.job_id = jobs.id AND scans.status = 'PASS'),
			cached_fail_count  = (SELECT COUNT(*) FROM scans WHERE scans.job_id = jobs.id AND scans.status = 'FAIL'),
			cached_total_scans = (SELECT COUNT(*) FROM scans WHERE scans.job_id = jobs.id)`)
	if result.Error != nil {
		return 0, result.Error
	}

	config.GetLogger().WithField("jobs", result.RowsAffected).
		Info("Cached counters reconciled from scan log")
	return result.RowsAffected, nil
}
