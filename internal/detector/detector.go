package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrDetectorUnavailable is returned when no landmark service can be located.
	ErrDetectorUnavailable = errors.New("landmark service not available")
	// ErrServiceBackoff is returned while a crashed landmark service waits to
	// be restarted.
	ErrServiceBackoff = errors.New("landmark service restart pending")
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Python is the interpreter used to run the landmark service.
	// Empty means search for a virtual environment, then fall back to python3.
	Python string

	// Script is the path to the landmark service. Empty means search the
	// usual locations.
	Script string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
