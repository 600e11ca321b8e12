package services

import (
	"time"

	"verify-station/config"

	"github.com/sirupsen/logrus"
)

// Relay wiring on the line controller (BCM numbering).
const (
	PinAlarmRelay = 17
	PinPassLight  = 27
	PinFailLight  = 22
	PinLineStop   = 23

	passLightPulse = 1 * time.Second
	alarmDuration  = 3 * time.Second
)

// Indicator drives the pass/fail lights and the alarm relay. Every call is
// fire-and-forget; scan processing never waits on hardware timing. Off-device
// builds (USE_GPIO=false) log the signals instead of toggling pins.
type Indicator struct {
	enabled bool
}

func NewIndicator(enabled bool) *Indicator {
	if enabled {
		config.GetLogger().Info("GPIO indicator enabled")
	} else {
		config.GetLogger().Info("GPIO indicator in simulation mode")
	}
	return &Indicator{enabled: enabled}
}

// Notify signals a scan outcome. Returns immediately; the light/alarm timing
// runs on its own goroutine.
func (i *Indicator) Notify(status string) {
	go func() {
		if status == "PASS" {
			i.pulse(PinPassLight, passLightPulse, "PASS")
			return
		}
		i.pulse(PinFailLight, alarmDuration, "FAIL - ALARM")
	}()
}

func (i *Indicator) pulse(pin int, hold time.Duration, label string) {
	config.GetLogger().WithFields(logrus.Fields{
		"pin":      pin,
		"hold_ms":  hold.Milliseconds(),
		"hardware": i.enabled,
	}).Debug("[GPIO] " + label)
	if !i.enabled {
		return
	}
	// Relay driver goes here on the line controller build.
	time.Sleep(hold)
}

// AllOff drops every output, called on job end and shutdown.
func (i *Indicator) AllOff() {
	config.GetLogger().WithField("hardware", i.enabled).Debug("[GPIO] all off")
}
