// Package app runs the help-signal loop: capture, detect, classify, render.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/helpsign/internal/capture"
	"github.com/ayusman/helpsign/internal/detector"
	"github.com/ayusman/helpsign/internal/gesture"
	"github.com/ayusman/helpsign/internal/notify"
	"github.com/ayusman/helpsign/internal/overlay"
)

// WindowTitle is the title of the output window.
const WindowTitle = "Hand Tracking"

// PollDelay is how long each iteration waits for key and mouse input.
const PollDelay = 5 * time.Millisecond

// Config holds configuration options for the application.
type Config struct {
	// Mirror flips frames horizontally before detection so the view acts
	// like a mirror.
	Mirror bool

	// MotionThresh is the percentage of changed pixels that counts as motion
	// for capture-rate throttling. Zero uses the capture default.
	MotionThresh float64
}

// App owns the capture device, the landmark source and the display for the
// lifetime of one Run.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	display    Display
	classifier *gesture.Classifier
	motion     *capture.MotionDetector
	throttle   *capture.Throttle
	notice     notify.State
	now        func() time.Time
}

// New creates an App from its collaborators.
func New(config Config, camera capture.Camera, det detector.Detector, display Display) *App {
	return &App{
		config:     config,
		camera:     camera,
		detector:   det,
		display:    display,
		classifier: gesture.NewClassifier(),
		motion:     capture.NewMotionDetector(config.MotionThresh),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for gesture timing and alerts.
func (a *App) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	a.now = now
	a.classifier.SetClock(now)
}

// Notification returns the current notification state.
func (a *App) Notification() notify.State {
	return a.notice
}

// Latch returns the current gesture latch.
func (a *App) Latch() gesture.Latch {
	return a.classifier.Latch()
}

// Run opens the camera and processes frames until the stream ends, ESC is
// pressed or ctx is cancelled. The camera, detector and display are released
// on every exit path.
func (a *App) Run(ctx context.Context) error {
	defer a.release()

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.throttle = capture.NewThrottle(a.camera, a.now())

	log.Info("Watching for help signal (ESC to quit)")

	frames := 0
	for {
		select {
		case <-ctx.Done():
			log.WithField("frames", frames).Info("Stopped")
			return nil
		default:
		}

		done, err := a.processFrame()
		if err != nil {
			log.WithError(err).WithField("frames", frames).Info("Video stream ended")
			return nil
		}
		frames++
		if done {
			log.WithField("frames", frames).Info("Exit key pressed")
			return nil
		}
	}
}

// processFrame runs one capture-detect-classify-render iteration. It returns
// done when the exit key was pressed, and an error when no frame could be read.
func (a *App) processFrame() (done bool, err error) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return false, err
	}
	defer frame.Close()

	if a.config.Mirror {
		gocv.Flip(*frame, frame, 1)
	}

	moved, _ := a.motion.Detect(frame)
	a.throttle.Observe(moved, a.now())

	hands, err := a.detector.Detect(frame)
	if err != nil {
		entry := log.WithError(err)
		if errors.Is(err, detector.ErrServiceBackoff) {
			entry.Debug("Hand detection paused")
		} else {
			entry.Warn("Hand detection failed")
		}
		hands = nil
	}

	for i := range hands {
		overlay.DrawHand(frame, &hands[i])
	}

	if len(hands) > 0 && a.classifier.Classify(&hands[0]) {
		a.notice = notify.Raise(a.notice, a.now())
	}

	overlay.DrawStatus(frame, a.classifier.Latch().Armed)
	overlay.DrawNotification(frame, a.notice)
	a.display.Show(frame)

	key, clicks := a.display.Poll(PollDelay)
	for _, pt := range clicks {
		a.notice = notify.HandleClick(pt, a.notice)
	}

	return key == KeyEsc, nil
}

func (a *App) release() {
	if err := a.camera.Close(); err != nil {
		log.WithError(err).Error("Error closing camera")
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		log.WithError(err).Debug("Detector closed with error")
	}
	if err := a.display.Close(); err != nil {
		log.WithError(err).Error("Error closing window")
	}
}
