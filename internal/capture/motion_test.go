package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solid(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "explicit threshold", threshold: 5.0, want: 5.0},
		{name: "low threshold", threshold: 0.5, want: 0.5},
		{name: "zero uses default", threshold: 0, want: DefaultMotionThreshold},
		{name: "negative uses default", threshold: -1, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := solid(0)
	defer frame1.Close()
	frame2 := solid(0)
	defer frame2.Close()

	detected, changePercent := md.Detect(&frame1)
	if detected || changePercent != 0 {
		t.Errorf("first frame = (%v, %f), want baseline only", detected, changePercent)
	}

	if detected, changePercent = md.Detect(&frame2); detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solid(0)
	defer black.Close()
	white := solid(255)
	defer white.Close()

	md.Detect(&black)

	detected, changePercent := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, pct := md.Detect(nil); detected || pct != 0 {
		t.Errorf("Detect(nil) = (%v, %f), want (false, 0)", detected, pct)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	// Close multiple times should not panic
	md.Close()
	md.Close()
}
