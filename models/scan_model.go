package models

import "time"

// Scan is one barcode read event. Rows are immutable once created and are
// deleted with their job.
type Scan struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JobID     int64     `json:"job_id" gorm:"index"`
	Barcode   string    `json:"barcode" gorm:"size:200"`
	Expected  string    `json:"expected" gorm:"size:200"`
	Status    string    `json:"status" gorm:"size:10"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}
