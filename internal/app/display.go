package app

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

// KeyEsc is the key code that ends the loop.
const KeyEsc = 27

// Left button down, as reported by OpenCV mouse callbacks.
const mouseLeftButtonDown = 1

// Display shows annotated frames and reports user input.
type Display interface {
	// Show presents img. The display does not retain img.
	Show(img *gocv.Mat)

	// Poll waits up to delay for input and returns the pressed key
	// (-1 for none) and the left-button clicks received since the last Poll,
	// oldest first.
	Poll(delay time.Duration) (key int, clicks []image.Point)

	// Close releases the display.
	Close() error
}

// Window is a Display backed by an OpenCV HighGUI window.
// Mouse callbacks run inside WaitKey on the calling goroutine, so clicks are
// only ever appended and drained from within Poll.
type Window struct {
	win     *gocv.Window
	pending []image.Point
}

// NewWindow opens a titled window and hooks its mouse events.
func NewWindow(title string) *Window {
	w := &Window{win: gocv.NewWindow(title)}
	w.win.SetMouseHandler(w.onMouse, nil)
	return w
}

func (w *Window) onMouse(event, x, y, flags int, _ interface{}) {
	if event == mouseLeftButtonDown {
		w.pending = append(w.pending, image.Pt(x, y))
	}
}

// Show implements Display.
func (w *Window) Show(img *gocv.Mat) {
	w.win.IMShow(*img)
}

// Poll implements Display.
func (w *Window) Poll(delay time.Duration) (int, []image.Point) {
	ms := int(delay / time.Millisecond)
	if ms < 1 {
		ms = 1
	}

	key := w.win.WaitKey(ms)
	if key >= 0 {
		key &= 0xFF
	}

	clicks := w.pending
	w.pending = nil
	return key, clicks
}

// Close implements Display.
func (w *Window) Close() error {
	return w.win.Close()
}
