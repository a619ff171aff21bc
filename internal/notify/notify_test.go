package notify

import (
	"image"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRaise(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("activates inactive state", func(t *testing.T) {
		s := Raise(State{}, now)

		if !s.Active {
			t.Fatal("expected active notification")
		}
		if s.AlertID == "" {
			t.Error("expected alert ID to be set")
		}
		if !s.RaisedAt.Equal(now) {
			t.Errorf("RaisedAt = %v, want %v", s.RaisedAt, now)
		}
	})

	t.Run("repeat raise keeps the same alert", func(t *testing.T) {
		first := Raise(State{}, now)
		second := Raise(first, now.Add(time.Second))

		if second != first {
			t.Errorf("repeat raise changed state: %+v -> %+v", first, second)
		}
	})

	t.Run("new alert after dismiss", func(t *testing.T) {
		first := Raise(State{}, now)
		again := Raise(Dismiss(first), now.Add(time.Second))

		if again.AlertID == first.AlertID {
			t.Error("expected a fresh alert ID after dismiss")
		}
	})
}

func TestDismiss(t *testing.T) {
	s := Dismiss(Raise(State{}, time.Now()))
	if s.Active || s.AlertID != "" {
		t.Errorf("Dismiss() = %+v, want zero state", s)
	}

	if got := Dismiss(State{}); got.Active {
		t.Error("dismissing an inactive notification should stay inactive")
	}
}

func TestHandleClick(t *testing.T) {
	tests := []struct {
		name       string
		pt         image.Point
		wantActive bool
	}{
		{name: "button center", pt: image.Pt(285, 45), wantActive: false},
		{name: "top left corner", pt: image.Pt(270, 30), wantActive: false},
		{name: "bottom right corner", pt: image.Pt(300, 60), wantActive: false},
		{name: "left of button", pt: image.Pt(269, 45), wantActive: true},
		{name: "right of button", pt: image.Pt(301, 45), wantActive: true},
		{name: "above button", pt: image.Pt(285, 29), wantActive: true},
		{name: "below button", pt: image.Pt(285, 61), wantActive: true},
		{name: "message text", pt: image.Pt(100, 70), wantActive: true},
		{name: "far away", pt: image.Pt(600, 400), wantActive: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Raise(State{}, time.Now())
			got := HandleClick(tt.pt, s)

			if got.Active != tt.wantActive {
				t.Errorf("HandleClick(%v).Active = %v, want %v", tt.pt, got.Active, tt.wantActive)
			}
			if tt.wantActive && got != s {
				t.Errorf("click outside the button changed state: %+v -> %+v", s, got)
			}
		})
	}
}

func TestHandleClick_Inactive(t *testing.T) {
	got := HandleClick(image.Pt(285, 45), State{})
	if got.Active {
		t.Error("click on an inactive notification should leave it inactive")
	}
}

func TestGeometry(t *testing.T) {
	if !DismissRegion.In(Box) {
		t.Errorf("dismiss region %v should lie inside box %v", DismissRegion, Box)
	}
	if !MessageOrigin.In(Box) {
		t.Errorf("message origin %v should lie inside box %v", MessageOrigin, Box)
	}
}

func TestHandleClick_LogsEveryClick(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	defer log.SetLevel(log.GetLevel())
	log.SetLevel(log.InfoLevel)

	s := Raise(State{}, time.Now())
	hook.Reset()

	got := HandleClick(image.Pt(600, 400), s)
	if !got.Active {
		t.Fatal("click outside the button should not dismiss")
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected the click to be logged at info level")
	}
	if entry.Level != log.InfoLevel || entry.Data["x"] != 600 || entry.Data["y"] != 400 {
		t.Errorf("unexpected log entry: level=%v data=%v", entry.Level, entry.Data)
	}
}
