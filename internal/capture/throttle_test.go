package capture

import (
	"testing"
	"time"
)

func TestThrottle(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cam := NewMockCamera(nil, false)
	th := NewThrottle(cam, start)

	if !th.Active() {
		t.Fatal("throttle should start active")
	}

	th.Observe(false, start.Add(time.Second))
	if !th.Active() {
		t.Error("should stay active before IdleAfter elapses")
	}

	th.Observe(false, start.Add(IdleAfter+time.Millisecond))
	if th.Active() {
		t.Error("should go idle after IdleAfter without motion")
	}
	if got := cam.FPS(); got != IdleFPS {
		t.Errorf("camera FPS = %d, want %d", got, IdleFPS)
	}

	th.Observe(true, start.Add(3*time.Second))
	if !th.Active() {
		t.Error("motion should reactivate")
	}
	if got := cam.FPS(); got != ActiveFPS {
		t.Errorf("camera FPS = %d, want %d", got, ActiveFPS)
	}

	th.Observe(false, start.Add(4*time.Second))
	if !th.Active() {
		t.Error("quiet period is measured from the last motion")
	}
}
