package overlay

import (
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/helpsign/internal/detector"
	"github.com/ayusman/helpsign/internal/notify"
)

func pixel(m gocv.Mat, x, y int) [3]uint8 {
	v := m.GetVecbAt(y, x)
	return [3]uint8{v[0], v[1], v[2]} // BGR
}

func TestDrawNotification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	t.Run("active draws red box and white button", func(t *testing.T) {
		img := blank()
		defer img.Close()

		DrawNotification(&img, notify.Raise(notify.State{}, time.Now()))

		if got := pixel(img, 35, 95); got != [3]uint8{0, 0, 255} {
			t.Errorf("box pixel = %v, want red", got)
		}
		if got := pixel(img, 272, 58); got != [3]uint8{255, 255, 255} {
			t.Errorf("button pixel = %v, want white", got)
		}
		if got := pixel(img, 320, 240); got != [3]uint8{0, 0, 0} {
			t.Errorf("pixel outside the box = %v, want untouched", got)
		}
	})

	t.Run("inactive draws nothing", func(t *testing.T) {
		img := blank()
		defer img.Close()

		DrawNotification(&img, notify.State{})

		gray := grayOf(img)
		defer gray.Close()

		if n := gocv.CountNonZero(gray); n != 0 {
			t.Errorf("expected blank frame, %d pixels drawn", n)
		}
	})
}

func TestDrawHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := blank()
	defer img.Close()

	hand := detector.OpenPalmLandmarks()
	DrawHand(&img, &hand)

	wrist := hand.Pixel(detector.Wrist, img.Cols(), img.Rows())
	if got := pixel(img, wrist.X, wrist.Y); got != [3]uint8{0, 0, 255} {
		t.Errorf("wrist joint pixel = %v, want red", got)
	}
}

func TestDraw_NilInputs(t *testing.T) {
	// None of these should panic.
	DrawHand(nil, nil)
	DrawNotification(nil, notify.State{Active: true})
	DrawStatus(nil, true)

	empty := gocv.NewMat()
	defer empty.Close()
	DrawHand(&empty, &detector.HandLandmarks{})
	DrawNotification(&empty, notify.State{Active: true})
}

func grayOf(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray
}

func blank() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
}
