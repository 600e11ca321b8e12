package models

import "time"

// Read shapes sent to the kiosk and monitor displays. Times are pre-formatted
// so the front end never does date math.

type ScanRead struct {
	ID        uint   `json:"id"`
	Barcode   string `json:"barcode"`
	Expected  string `json:"expected"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func NewScanRead(s *Scan) ScanRead {
	return ScanRead{
		ID:        s.ID,
		Barcode:   s.Barcode,
		Expected:  s.Expected,
		Status:    s.Status,
		Timestamp: s.Timestamp.Format("15:04:05"),
	}
}

func NewScanReads(scans []Scan) []ScanRead {
	reads := make([]ScanRead, 0, len(scans))
	for i := range scans {
		reads = append(reads, NewScanRead(&scans[i]))
	}
	return reads
}

type JobRead struct {
	ID               int64   `json:"id"`
	JobID            string  `json:"job_id"`
	ExpectedBarcode  string  `json:"expected_barcode"`
	PiecesPerShipper int     `json:"pieces_per_shipper"`
	TargetQuantity   int     `json:"target_quantity"`
	StartTime        string  `json:"start_time"`
	StartTimeISO     string  `json:"start_time_iso"`
	IsActive         bool    `json:"is_active"`
	IsLocked         bool    `json:"is_locked"`
	PassCount        int     `json:"pass_count"`
	FailCount        int     `json:"fail_count"`
	TotalScans       int     `json:"total_scans"`
	TotalPieces      int     `json:"total_pieces"`
	PassRate         float64 `json:"pass_rate"`
	Elapsed          string  `json:"elapsed"`
	ScansThisHour    int     `json:"scans_this_hour"`
	PiecesThisHour   int     `json:"pieces_this_hour"`
	ScansPrevHour    int     `json:"scans_prev_hour"`
	PiecesPrevHour   int     `json:"pieces_prev_hour"`
}

func NewJobRead(j *Job, scansThisHour, scansPrevHour int) JobRead {
	return JobRead{
		ID:               j.ID,
		JobID:            j.JobID,
		ExpectedBarcode:  j.ExpectedBarcode,
		PiecesPerShipper: j.PiecesPerShipper,
		TargetQuantity:   j.TargetQuantity,
		StartTime:        j.StartTime.Format("15:04"),
		StartTimeISO:     j.StartTime.Format(time.RFC3339),
		IsActive:         j.IsActive,
		IsLocked:         j.IsLocked,
		PassCount:        j.CachedPassCount,
		FailCount:        j.CachedFailCount,
		TotalScans:       j.CachedTotalScans,
		TotalPieces:      j.TotalPieces(),
		PassRate:         j.PassRate(),
		Elapsed:          j.Elapsed(),
		ScansThisHour:    scansThisHour,
		PiecesThisHour:   scansThisHour * j.PiecesPerShipper,
		ScansPrevHour:    scansPrevHour,
		PiecesPrevHour:   scansPrevHour * j.PiecesPerShipper,
	}
}

type JobSummary struct {
	JobID       string  `json:"job_id"`
	TotalScans  int     `json:"total_scans"`
	TotalPieces int     `json:"total_pieces"`
	PassCount   int     `json:"pass_count"`
	FailCount   int     `json:"fail_count"`
	PassRate    float64 `json:"pass_rate"`
	Elapsed     string  `json:"elapsed"`
}

func NewJobSummary(j *Job) JobSummary {
	return JobSummary{
		JobID:       j.JobID,
		TotalScans:  j.CachedTotalScans,
		TotalPieces: j.TotalPieces(),
		PassCount:   j.CachedPassCount,
		FailCount:   j.CachedFailCount,
		PassRate:    j.PassRate(),
		Elapsed:     j.Elapsed(),
	}
}
