package trafficview

import "testing"

func newTestViewer(t *testing.T, opts ...Option) *Viewer {
	t.Helper()
	opts = append([]Option{WithHUD(false)}, opts...)
	v, err := NewViewer(DefaultGridSize, DefaultFirstStreet, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// tick runs n updates with no device input.
func tick(v *Viewer, n int) {
	for i := 0; i < n; i++ {
		v.advance(inputFrame{}, false, 1.0/60)
	}
}

func TestInjectDrag(t *testing.T) {
	v := newTestViewer(t)
	v.Camera().ZoomTo(2, 1)
	v.InjectDrag(Vec2{1000, 1000}, Vec2{1100, 1060}, 4)
	if len(v.injectQueue) != 5 {
		t.Fatalf("queued %d events, want press, 3 moves, release", len(v.injectQueue))
	}
	if _, ok := v.injectQueue[0].(PointerDown); !ok {
		t.Errorf("first = %T", v.injectQueue[0])
	}
	if m, ok := v.injectQueue[3].(PointerMove); !ok || m.Pos != (Vec2{1100, 1060}) {
		t.Errorf("last move = %#v", v.injectQueue[3])
	}

	tick(v, 5)
	if len(v.injectQueue) != 0 {
		t.Fatalf("%d events left", len(v.injectQueue))
	}
	off := v.Camera().Offset()
	if !approxEqual(off.X, 50, 1e-9) || !approxEqual(off.Y, 30, 1e-9) {
		t.Errorf("offset = %v, want (50,30)", off)
	}
	if _, ok := v.Gestures().State().(GestureIdle); !ok {
		t.Errorf("state = %T", v.Gestures().State())
	}
}

func TestInjectDragMinimumFrames(t *testing.T) {
	v := newTestViewer(t)
	v.InjectDrag(Vec2{}, Vec2{10, 10}, 0)
	if len(v.injectQueue) != 3 {
		t.Errorf("queued %d events, want 3", len(v.injectQueue))
	}
}

func TestInjectPinch(t *testing.T) {
	v := newTestViewer(t)
	v.InjectPinch(Vec2{1060, 1060}, 100, 200, 5)
	if len(v.injectQueue) != 9 {
		t.Fatalf("queued %d events, want 9", len(v.injectQueue))
	}
	tick(v, 9)
	if !approxEqual(v.Camera().Zoom(), 4, 1e-9) {
		t.Errorf("zoom = %v, want 4", v.Camera().Zoom())
	}
	if _, ok := v.Gestures().State().(GestureIdle); !ok {
		t.Errorf("state = %T", v.Gestures().State())
	}
}

func TestInjectWheelAndRelease(t *testing.T) {
	v := newTestViewer(t)
	v.InjectWheel(-500)
	v.InjectPress(10, 10)
	v.InjectLeave()
	tick(v, 1)
	if !approxEqual(v.Camera().Zoom(), 1.4, 1e-9) {
		t.Errorf("zoom = %v, want 1.4", v.Camera().Zoom())
	}
	tick(v, 1)
	if _, ok := v.Gestures().State().(GestureDragging); !ok {
		t.Errorf("after press: %T", v.Gestures().State())
	}
	tick(v, 1)
	if _, ok := v.Gestures().State().(GestureIdle); !ok {
		t.Errorf("after leave: %T", v.Gestures().State())
	}
}

func TestPopInjectedOrder(t *testing.T) {
	v := newTestViewer(t)
	v.InjectMove(1, 1)
	v.InjectRelease()
	ev, ok := v.popInjected()
	if !ok || ev != (PointerMove{Vec2{1, 1}}) {
		t.Errorf("first = %#v", ev)
	}
	ev, ok = v.popInjected()
	if !ok || ev != (PointerUp{}) {
		t.Errorf("second = %#v", ev)
	}
	if _, ok := v.popInjected(); ok {
		t.Error("queue not empty")
	}
}

func TestInjectedInputReplacesDeviceInput(t *testing.T) {
	v := newTestViewer(t)
	v.Camera().ZoomTo(2, 1)
	v.InjectWheel(-100)
	// A real press in the same frame is dropped.
	v.advance(inputFrame{cursor: Vec2{5, 5}, inside: true, pressed: true}, false, 1.0/60)
	if _, ok := v.Gestures().State().(GestureIdle); !ok {
		t.Errorf("device press was handled: %T", v.Gestures().State())
	}
	if v.Camera().Zoom() <= 2 {
		t.Errorf("injected wheel not applied: zoom %v", v.Camera().Zoom())
	}
}
