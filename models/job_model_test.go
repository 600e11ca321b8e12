package models

import (
	"testing"
	"time"
)

func TestPassRate(t *testing.T) {
	cases := []struct {
		pass     int
		total    int
		expected float64
	}{
		{0, 0, 0},
		{1, 2, 50.0},
		{3, 5, 60.0},
		{2, 3, 66.7},
		{1, 3, 33.3},
		{7, 7, 100.0},
	}
	for _, tc := range cases {
		job := Job{CachedPassCount: tc.pass, CachedTotalScans: tc.total}
		if got := job.PassRate(); got != tc.expected {
			t.Fatalf("PassRate with %d/%d expected %.1f, got %.1f", tc.pass, tc.total, tc.expected, got)
		}
	}
}

func TestTotalPieces(t *testing.T) {
	job := Job{CachedPassCount: 4, PiecesPerShipper: 12}
	if got := job.TotalPieces(); got != 48 {
		t.Fatalf("TotalPieces expected 48, got %d", got)
	}
}

func TestElapsedFormat(t *testing.T) {
	start := time.Now().Add(-(1*time.Hour + 2*time.Minute + 3*time.Second))
	end := time.Now()
	job := Job{StartTime: start, EndTime: &end}
	if got := job.Elapsed(); got != "1:02:03" {
		t.Fatalf("Elapsed expected 1:02:03, got %s", got)
	}
}

func TestElapsedStopsAtEndTime(t *testing.T) {
	start := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	end := start.Add(30 * time.Second)
	job := Job{StartTime: start, EndTime: &end}
	if got := job.Elapsed(); got != "0:00:30" {
		t.Fatalf("Elapsed expected 0:00:30, got %s", got)
	}
}
