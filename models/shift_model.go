package models

import "time"

const ShiftDateLayout = "2006-01-02"

// ShiftStats is the daily aggregate of all jobs ended that date. One row per
// date, created lazily, accumulated only by the end-job transition.
type ShiftStats struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	Date          string `json:"date" gorm:"size:10;uniqueIndex"`
	TotalShippers int    `json:"total_shippers" gorm:"default:0"`
	TotalPieces   int    `json:"total_pieces" gorm:"default:0"`
	TotalPass     int    `json:"total_pass" gorm:"default:0"`
	TotalFail     int    `json:"total_fail" gorm:"default:0"`
	JobsCompleted int    `json:"jobs_completed" gorm:"default:0"`
}

func Today() string {
	return time.Now().Format(ShiftDateLayout)
}
