package models

import (
	"fmt"
	"time"

	"verify-station/controllers/idgen"

	"gorm.io/gorm"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Job is one verification run against a single expected barcode.
type Job struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	JobID            string     `json:"job_id" gorm:"size:100;index"`
	ExpectedBarcode  string     `json:"expected_barcode" gorm:"size:200"`
	PiecesPerShipper int        `json:"pieces_per_shipper" gorm:"default:1"`
	TargetQuantity   int        `json:"target_quantity" gorm:"default:0"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	IsActive         bool       `json:"is_active" gorm:"index"`
	IsLocked         bool       `json:"is_locked"`

	// Cached counters, kept in step with the scans table inside the same
	// transaction that inserts each scan. cached_pass_count + cached_fail_count
	// must always equal cached_total_scans.
	CachedPassCount  int `json:"-" gorm:"default:0"`
	CachedFailCount  int `json:"-" gorm:"default:0"`
	CachedTotalScans int `json:"-" gorm:"default:0"`

	Scans []Scan `json:"-" gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == 0 {
		j.ID = idgen.GenerateID()
	}
	return
}

func (j *Job) TotalPieces() int {
	return j.CachedPassCount * j.PiecesPerShipper
}

// PassRate is a percentage rounded to one decimal, 0 when nothing was scanned.
func (j *Job) PassRate() float64 {
	if j.CachedTotalScans == 0 {
		return 0
	}
	rate := float64(j.CachedPassCount) / float64(j.CachedTotalScans) * 100
	return float64(int(rate*10+0.5)) / 10
}

// Elapsed formats the running time as H:MM:SS. Ended jobs stop at end_time.
func (j *Job) Elapsed() string {
	end := time.Now()
	if j.EndTime != nil {
		end = *j.EndTime
	}
	total := int(end.Sub(j.StartTime).Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
