// Package overlay draws hand skeletons and the help notification onto frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/helpsign/internal/detector"
	"github.com/ayusman/helpsign/internal/notify"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

// Drawing parameters.
const (
	JointRadius   = 3
	BoneThickness = 2
	FontScale     = 1.0
	TextThickness = 2
)

// DrawHand draws the skeleton and joints of a hand onto img.
func DrawHand(img *gocv.Mat, hand *detector.HandLandmarks) {
	if img == nil || img.Empty() || hand == nil {
		return
	}

	w, h := img.Cols(), img.Rows()
	for _, c := range detector.HandConnections {
		gocv.Line(img, hand.Pixel(c[0], w, h), hand.Pixel(c[1], w, h), white, BoneThickness)
	}
	for i := 0; i < detector.NumLandmarks; i++ {
		gocv.Circle(img, hand.Pixel(i, w, h), JointRadius, red, -1)
	}
}

// DrawNotification draws the filled help box, its message and the close
// button. Nothing is drawn while the notification is inactive.
func DrawNotification(img *gocv.Mat, s notify.State) {
	if img == nil || img.Empty() || !s.Active {
		return
	}

	gocv.Rectangle(img, notify.Box, red, -1)
	gocv.PutTextWithParams(img, notify.Message, notify.MessageOrigin,
		gocv.FontHersheySimplex, FontScale, white, TextThickness, gocv.LineAA, false)

	gocv.Rectangle(img, notify.DismissRegion, white, -1)
	gocv.PutTextWithParams(img, "X", notify.CloseOrigin,
		gocv.FontHersheySimplex, FontScale, red, TextThickness, gocv.LineAA, false)
}

// DrawStatus draws a small indicator while the gesture latch is armed.
func DrawStatus(img *gocv.Mat, armed bool) {
	if img == nil || img.Empty() || !armed {
		return
	}
	center := image.Pt(img.Cols()-20, 20)
	gocv.Circle(img, center, 8, green, -1)
}
