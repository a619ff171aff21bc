package capture

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Capture rates used by Throttle.
const (
	// IdleFPS is requested from the camera while the scene is still.
	IdleFPS = 10
	// ActiveFPS is requested as soon as motion is seen.
	ActiveFPS = DefaultFPS
	// IdleAfter is how long the scene must stay still before dropping to IdleFPS.
	IdleAfter = 2 * time.Second
)

// Throttle lowers the camera frame rate while nothing moves in view and
// restores it on motion. It never skips frames itself.
type Throttle struct {
	camera     Camera
	active     bool
	lastMotion time.Time
}

// NewThrottle creates a Throttle in active mode.
func NewThrottle(camera Camera, now time.Time) *Throttle {
	return &Throttle{
		camera:     camera,
		active:     true,
		lastMotion: now,
	}
}

// Observe records whether motion was seen at now and adjusts the camera.
func (t *Throttle) Observe(motion bool, now time.Time) {
	if motion {
		t.lastMotion = now
		if !t.active {
			t.active = true
			t.camera.SetFPS(ActiveFPS)
			log.WithField("fps", ActiveFPS).Debug("Switched to active capture")
		}
		return
	}

	if t.active && now.Sub(t.lastMotion) > IdleAfter {
		t.active = false
		t.camera.SetFPS(IdleFPS)
		log.WithField("fps", IdleFPS).Debug("Switched to idle capture")
	}
}

// Active reports whether the throttle is in active mode.
func (t *Throttle) Active() bool {
	return t.active
}
