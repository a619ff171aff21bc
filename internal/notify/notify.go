// Package notify holds the on-screen help notification and its transitions.
package notify

import (
	"image"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Notification geometry in frame pixels. Rectangle corners are inclusive.
var (
	Box           = image.Rect(30, 30, 300, 100)
	DismissRegion = image.Rect(270, 30, 300, 60)
	MessageOrigin = image.Pt(50, 70)
	CloseOrigin   = image.Pt(275, 55)
)

// Message is the text shown in the notification box.
const Message = "Help is needed!"

// State is the notification shown over the video.
type State struct {
	Active   bool
	AlertID  string
	RaisedAt time.Time
}

// Raise activates the notification. An already active notification keeps its
// alert ID and raise time.
func Raise(s State, now time.Time) State {
	if s.Active {
		return s
	}

	next := State{
		Active:   true,
		AlertID:  uuid.NewString(),
		RaisedAt: now,
	}
	log.WithField("alert", next.AlertID).Info("Help requested")
	return next
}

// Dismiss clears the notification.
func Dismiss(s State) State {
	if s.Active {
		log.WithField("alert", s.AlertID).Info("Help notification dismissed")
	}
	return State{}
}

// InDismissRegion reports whether pt lies on or inside the dismiss button.
func InDismissRegion(pt image.Point) bool {
	return pt.X >= DismissRegion.Min.X && pt.X <= DismissRegion.Max.X &&
		pt.Y >= DismissRegion.Min.Y && pt.Y <= DismissRegion.Max.Y
}

// HandleClick applies a pointer-down at pt. Clicks on the dismiss button
// clear the notification; all other clicks are only logged.
func HandleClick(pt image.Point, s State) State {
	log.WithFields(log.Fields{"x": pt.X, "y": pt.Y}).Info("Mouse clicked")

	if !InDismissRegion(pt) {
		return s
	}
	log.Debug("Close button clicked")
	return Dismiss(s)
}
