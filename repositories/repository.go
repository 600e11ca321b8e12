package repositories

import (
	"strings"
	"sync"
	"time"

	"verify-station/apperr"
	"verify-station/config"
)

// lifecycleMu serializes job start/end within the process. The store-level
// row lock still guards the invariant when several processes share a server
// database; sqlite cannot take FOR UPDATE so this mutex is the lock there.
var lifecycleMu sync.Mutex

const (
	maxRetries   = 3
	retryBackoff = 100 * time.Millisecond
)

// isTransientErr reports whether err is lock contention worth retrying.
func isTransientErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "busy")
}

// withRetry runs fn up to maxRetries times, backing off 100ms per attempt on
// transient store contention. Typed apperr failures pass through untouched.
func withRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil || !isTransientErr(err) {
			return err
		}
		config.GetLogger().WithField("attempt", attempt).
			Warn("Store busy, retrying: " + err.Error())
		time.Sleep(retryBackoff * time.Duration(attempt))
	}
	return apperr.Wrap(apperr.StoreTransient, "Database busy. Please try again.", err)
}
