// Package capture provides camera capture and scene-motion sensing using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Capture geometry requested from devices. Video files keep their own.
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrames is returned once a source has no more frames to give: the
	// device went away or the video file ended.
	ErrNoFrames = errors.New("no more frames")
)

// Camera is a frame source for the watch loop.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame; the caller closes it.
	ReadFrame() (*gocv.Mat, error)
	// SetFPS requests a capture rate. Values <= 0 are ignored.
	SetFPS(fps int)
	FPS() int
}

// Source reads frames through an OpenCV VideoCapture, either from a device
// index or from a video file.
type Source struct {
	mu     sync.Mutex
	target interface{} // int device index or string file path
	vc     *gocv.VideoCapture
	fps    int
}

// NewCamera returns a Source for the capture device with the given index.
func NewCamera(device int) *Source {
	return &Source{target: device, fps: DefaultFPS}
}

// NewVideoFile returns a Source that plays back the video at path once.
func NewVideoFile(path string) *Source {
	return &Source{target: path, fps: DefaultFPS}
}

func (s *Source) String() string {
	if path, ok := s.target.(string); ok {
		return path
	}
	return fmt.Sprintf("camera %d", s.target)
}

func (s *Source) isDevice() bool {
	_, ok := s.target.(int)
	return ok
}

// Open starts capturing. Devices are asked for 640x480 at the current FPS.
func (s *Source) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(s.target)
	if err != nil {
		return fmt.Errorf("open %s: %w", s, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open %s: source not available", s)
	}

	if s.isDevice() {
		vc.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		vc.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		vc.Set(gocv.VideoCaptureFPS, float64(s.fps))
	}
	s.vc = vc

	log.WithFields(log.Fields{
		"source": s.String(),
		"width":  vc.Get(gocv.VideoCaptureFrameWidth),
		"height": vc.Get(gocv.VideoCaptureFrameHeight),
	}).Info("Capture opened")

	return nil
}

// Close releases the capture. Closing a source that is not open is a no-op.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc == nil {
		return nil
	}
	err := s.vc.Close()
	s.vc = nil
	return err
}

// ReadFrame grabs the next frame. A failed or empty read means the stream
// is over and is reported as ErrNoFrames.
func (s *Source) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("read %s: %w", s, ErrNoFrames)
	}
	return &mat, nil
}

// SetFPS records the rate and forwards it to an open device. Video files
// play at their own rate.
func (s *Source) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fps = fps
	if s.vc != nil && s.isDevice() {
		s.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the last requested rate.
func (s *Source) FPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}
