// Package pinguard verifies the supervisor PIN behind a sliding-window rate
// limit keyed by client address. State is in-memory and process-local; a
// multi-instance deployment would have to move this into the shared store.
package pinguard

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"verify-station/apperr"
	"verify-station/config"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

type Guard struct {
	mu       sync.Mutex
	attempts map[string][]time.Time

	secret      string
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func New(secret string) *Guard {
	return &Guard{
		attempts:    make(map[string][]time.Time),
		secret:      secret,
		maxAttempts: DefaultMaxAttempts,
		window:      DefaultWindow,
		now:         time.Now,
	}
}

// Check reports whether clientAddr may attempt a PIN entry. When locked out it
// returns the time remaining until the oldest failure ages out of the window.
func (g *Guard) Check(clientAddr string) (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkLocked(clientAddr)
}

func (g *Guard) checkLocked(clientAddr string) (bool, time.Duration) {
	now := g.now()
	cutoff := now.Add(-g.window)

	kept := g.attempts[clientAddr][:0]
	for _, t := range g.attempts[clientAddr] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.attempts[clientAddr] = kept

	if len(kept) < g.maxAttempts {
		return true, 0
	}

	oldest := kept[0]
	for _, t := range kept {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return false, oldest.Add(g.window).Sub(now)
}

// Record appends an attempt for clientAddr. Only failures count toward the
// window; a success is logged but never consumes attempt budget.
func (g *Guard) Record(clientAddr string, success bool) {
	if success {
		config.GetLogger().WithFields(logrus.Fields{
			"client": clientAddr,
		}).Info("PIN verified successfully")
		return
	}

	g.mu.Lock()
	g.attempts[clientAddr] = append(g.attempts[clientAddr], g.now())
	count := len(g.attempts[clientAddr])
	g.mu.Unlock()

	config.GetLogger().WithFields(logrus.Fields{
		"client":  clientAddr,
		"attempt": count,
		"max":     g.maxAttempts,
	}).Warn("Failed PIN attempt")
}

// Verify composes Check, the secret comparison and Record.
func (g *Guard) Verify(pin, clientAddr string) error {
	allowed, retryAfter := g.Check(clientAddr)
	if !allowed {
		minutes := int(retryAfter.Minutes()) + 1
		config.GetLogger().WithFields(logrus.Fields{
			"client": clientAddr,
		}).Warn("PIN rate limit exceeded")
		return apperr.New(apperr.TooManyAttempts,
			fmt.Sprintf("Too many PIN attempts. Try again in %d minutes.", minutes))
	}

	success := subtle.ConstantTimeCompare([]byte(pin), []byte(g.secret)) == 1
	g.Record(clientAddr, success)

	if !success {
		return apperr.New(apperr.Forbidden, "Invalid supervisor PIN")
	}
	return nil
}
