// Package gesture recognizes the help signal: a thumb tucked toward the palm
// followed, within a short window, by the fingers folding down over it.
package gesture

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/helpsign/internal/detector"
)

// ConfirmWindow is how long after arming a folded hand still confirms.
const ConfirmWindow = 2 * time.Second

// Latch is the classifier state carried between frames.
// The zero value is Idle.
type Latch struct {
	Armed   bool
	ArmedAt time.Time
}

// String returns "idle" or "armed".
func (l Latch) String() string {
	if l.Armed {
		return "armed"
	}
	return "idle"
}

// ThumbTucked reports whether the thumb tip sits below the index fingertip.
// Image y grows downward.
func ThumbTucked(hand *detector.HandLandmarks) bool {
	return hand.Points[detector.ThumbTip].Y > hand.Points[detector.IndexTip].Y
}

// FingersFolded reports whether every non-thumb fingertip sits below the thumb tip.
func FingersFolded(hand *detector.HandLandmarks) bool {
	thumb := hand.Points[detector.ThumbTip].Y
	for _, tip := range detector.FingerTips {
		if hand.Points[tip].Y <= thumb {
			return false
		}
	}
	return true
}

// Step advances the latch by one frame observed at now and reports whether
// the gesture is confirmed on this frame.
//
//	Idle,  tucked              -> Armed(now), false
//	Idle,  not tucked          -> Idle, false
//	Armed, folded, in window   -> Armed (unchanged), true
//	Armed, folded, expired     -> Armed (unchanged), false
//	Armed, not folded          -> Idle, false
//
// A confirmed latch is not disarmed, so every folded frame inside the
// window confirms again. A nil hand leaves the latch untouched.
func Step(l Latch, hand *detector.HandLandmarks, now time.Time) (Latch, bool) {
	if hand == nil {
		return l, false
	}

	if !l.Armed {
		if ThumbTucked(hand) {
			return Latch{Armed: true, ArmedAt: now}, false
		}
		return l, false
	}

	if !FingersFolded(hand) {
		return Latch{}, false
	}
	return l, now.Sub(l.ArmedAt) < ConfirmWindow
}

// Classifier owns a Latch for a single tracked hand and stamps frames with
// its clock.
type Classifier struct {
	latch Latch
	now   func() time.Time
}

// NewClassifier creates an idle Classifier using wall-clock time.
func NewClassifier() *Classifier {
	return &Classifier{now: time.Now}
}

// SetClock replaces the time source. Nil restores time.Now.
func (c *Classifier) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.now = now
}

// Classify feeds one frame's hand into the latch and reports whether the
// gesture is confirmed on this frame.
func (c *Classifier) Classify(hand *detector.HandLandmarks) bool {
	now := c.now()
	prev := c.latch
	next, confirmed := Step(prev, hand, now)
	c.latch = next

	if prev.Armed != next.Armed {
		entry := log.WithField("latch", next.String())
		if next.Armed {
			entry = entry.WithField("armed_at", next.ArmedAt.Format(time.RFC3339Nano))
		}
		entry.Debug("Gesture latch changed")
	}
	if confirmed {
		log.WithField("elapsed", now.Sub(next.ArmedAt)).Debug("Help signal confirmed")
	}

	return confirmed
}

// Latch returns the current latch state.
func (c *Classifier) Latch() Latch {
	return c.latch
}
