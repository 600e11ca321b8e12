package controllers

import (
	"strings"
	"time"
)

// Characters blocked in operator-supplied identifiers and barcodes, same
// denylist the label printers reject. Keeps markup and statement fragments
// out of anything we echo back to displays.
const unsafeChars = `<>"'&;\`

func containsUnsafeChars(s string) bool {
	for _, r := range s {
		if r < 32 || strings.ContainsRune(unsafeChars, r) {
			return true
		}
	}
	return false
}

func timeNowHour() int {
	return time.Now().Hour()
}
