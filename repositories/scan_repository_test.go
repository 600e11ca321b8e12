package repositories

import (
	"testing"

	"verify-station/apperr"
	"verify-station/models"
)

func TestProcessScanClassifies(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	if _, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123"}); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	scan, job, err := scans.ProcessScan("ABC123", false)
	if err != nil {
		t.Fatalf("ProcessScan failed: %v", err)
	}
	if scan.Status != models.StatusPass {
		t.Fatalf("matching barcode expected PASS, got %s", scan.Status)
	}
	if scan.Expected != "ABC123" {
		t.Fatalf("scan should record the expected barcode, got %q", scan.Expected)
	}
	if job.CachedPassCount != 1 || job.CachedTotalScans != 1 {
		t.Fatalf("counters after PASS expected 1/1, got %d/%d",
			job.CachedPassCount, job.CachedTotalScans)
	}

	scan, job, err = scans.ProcessScan("XYZ999", false)
	if err != nil {
		t.Fatalf("ProcessScan failed: %v", err)
	}
	if scan.Status != models.StatusFail {
		t.Fatalf("mismatched barcode expected FAIL, got %s", scan.Status)
	}
	if job.CachedPassCount != 1 || job.CachedFailCount != 1 || job.CachedTotalScans != 2 {
		t.Fatalf("counters after FAIL expected 1/1/2, got %d/%d/%d",
			job.CachedPassCount, job.CachedFailCount, job.CachedTotalScans)
	}
}

func TestProcessScanNoActiveJob(t *testing.T) {
	scans := NewScanRepository(newTestDB(t))

	_, _, err := scans.ProcessScan("ABC123", false)
	if apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestCountersMatchScanLog(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	started, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123"})
	if err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	sequence := []string{"ABC123", "BAD", "ABC123", "ABC123", "NOPE", "ABC123"}
	for _, barcode := range sequence {
		if _, _, err := scans.ProcessScan(barcode, false); err != nil {
			t.Fatalf("ProcessScan(%s) failed: %v", barcode, err)
		}
	}

	job, err := jobs.GetJob(started.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}

	var pass, fail, total int64
	db.Model(&models.Scan{}).Where("job_id = ? AND status = ?", job.ID, models.StatusPass).Count(&pass)
	db.Model(&models.Scan{}).Where("job_id = ? AND status = ?", job.ID, models.StatusFail).Count(&fail)
	db.Model(&models.Scan{}).Where("job_id = ?", job.ID).Count(&total)

	if int64(job.CachedPassCount) != pass ||
		int64(job.CachedFailCount) != fail ||
		int64(job.CachedTotalScans) != total {
		t.Fatalf("cached %d/%d/%d diverged from scan log %d/%d/%d",
			job.CachedPassCount, job.CachedFailCount, job.CachedTotalScans,
			pass, fail, total)
	}
	if total != int64(len(sequence)) {
		t.Fatalf("expected %d scans persisted, got %d", len(sequence), total)
	}
}

func TestRecentScansNewestFirst(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	job, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123"})
	if err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}
	for _, barcode := range []string{"FIRST", "SECOND", "THIRD"} {
		if _, _, err := scans.ProcessScan(barcode, false); err != nil {
			t.Fatalf("ProcessScan failed: %v", err)
		}
	}

	recent, err := scans.RecentScans(job.ID, 2)
	if err != nil {
		t.Fatalf("RecentScans failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(recent))
	}
	if recent[0].Barcode != "THIRD" || recent[1].Barcode != "SECOND" {
		t.Fatalf("expected newest first (THIRD, SECOND), got (%s, %s)",
			recent[0].Barcode, recent[1].Barcode)
	}
}

func TestFailLocksLineUntilSupervisorClears(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	job, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123"})
	if err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	if _, locked, err := scans.ProcessScan("WRONG", true); err != nil {
		t.Fatalf("failing scan should still be recorded: %v", err)
	} else if !locked.IsLocked {
		t.Fatal("FAIL with lock enabled should lock the line")
	}

	_, _, err = scans.ProcessScan("ABC123", true)
	if apperr.KindOf(err) != apperr.Locked {
		t.Fatalf("scan on locked line expected Locked, got %v", err)
	}

	// Locked scans must not touch the log or the counters
	var total int64
	db.Model(&models.Scan{}).Where("job_id = ?", job.ID).Count(&total)
	if total != 1 {
		t.Fatalf("locked scan should not persist, expected 1 scan, got %d", total)
	}

	if err := jobs.SetLocked(job.ID, false); err != nil {
		t.Fatalf("SetLocked failed: %v", err)
	}
	scan, _, err := scans.ProcessScan("ABC123", true)
	if err != nil {
		t.Fatalf("scan after unlock failed: %v", err)
	}
	if scan.Status != models.StatusPass {
		t.Fatalf("expected PASS after unlock, got %s", scan.Status)
	}
}

func TestPassDoesNotLockLine(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	if _, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123"}); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	_, job, err := scans.ProcessScan("ABC123", true)
	if err != nil {
		t.Fatalf("ProcessScan failed: %v", err)
	}
	if job.IsLocked {
		t.Fatal("PASS must never lock the line")
	}
}

func TestLockDisabledFailDoesNotLock(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	if _, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123"}); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}

	_, job, err := scans.ProcessScan("WRONG", false)
	if err != nil {
		t.Fatalf("ProcessScan failed: %v", err)
	}
	if job.IsLocked {
		t.Fatal("FAIL with lock feature disabled should not lock the line")
	}

	// And the next scan still goes through
	if _, _, err := scans.ProcessScan("ABC123", false); err != nil {
		t.Fatalf("follow-up scan failed: %v", err)
	}
}

func TestHourlyStatsBuckets(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobRepository(db)
	scans := NewScanRepository(db)

	if _, err := jobs.StartJob(StartJobInput{ExpectedBarcode: "ABC123", PiecesPerShipper: 10}); err != nil {
		t.Fatalf("StartJob failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := scans.ProcessScan("ABC123", false); err != nil {
			t.Fatalf("ProcessScan failed: %v", err)
		}
	}
	// FAILs stay out of the hourly board
	if _, _, err := scans.ProcessScan("WRONG", false); err != nil {
		t.Fatalf("ProcessScan failed: %v", err)
	}

	buckets, err := scans.HourlyStats()
	if err != nil {
		t.Fatalf("HourlyStats failed: %v", err)
	}
	if len(buckets) != HourRangeEnd-HourRangeStart+1 {
		t.Fatalf("expected %d buckets, got %d", HourRangeEnd-HourRangeStart+1, len(buckets))
	}

	totalShippers, totalPieces := 0, 0
	for _, b := range buckets {
		totalShippers += b.Shippers
		totalPieces += b.Pieces
	}
	if last := buckets[len(buckets)-1].Cumulative; last != totalPieces {
		t.Fatalf("cumulative should end at total pieces %d, got %d", totalPieces, last)
	}

	// Off-window scans (a run outside 8-20) simply fall out of the buckets,
	// so totals are either the full 3 shippers or none.
	if totalShippers != 0 && totalShippers != 3 {
		t.Fatalf("unexpected shipper total %d", totalShippers)
	}
	if totalShippers == 3 && totalPieces != 30 {
		t.Fatalf("3 shippers at 10 pieces expected 30, got %d", totalPieces)
	}
}
