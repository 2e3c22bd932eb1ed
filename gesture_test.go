package trafficview

import (
	"math"
	"testing"
)

type recordingSink struct {
	events []GestureEvent
}

func (r *recordingSink) EmitGesture(ev GestureEvent) { r.events = append(r.events, ev) }

func (r *recordingSink) types() []GestureEventType {
	out := make([]GestureEventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func equalTypes(a, b []GestureEventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newTestGestures(size, zoom float64) (*Camera, *GestureController, *recordingSink) {
	cam := NewCamera(size)
	cam.ZoomTo(zoom, 1)
	g := NewGestureController(cam)
	sink := &recordingSink{}
	g.SetEventSink(sink)
	return cam, g, sink
}

func TestGestureDragMovesByDeltaOverZoom(t *testing.T) {
	tests := []struct {
		name  string
		zoom  float64
		start Vec2
		p     Vec2
		delta Vec2
	}{
		{"zoom 2", 2, Vec2{}, Vec2{100, 100}, Vec2{30, -20}},
		{"zoom 4 with offset", 4, Vec2{20, 20}, Vec2{380, 10}, Vec2{-40, 60}},
		{"zoom 8 tiny move", 8, Vec2{-50, 10}, Vec2{200, 200}, Vec2{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, g, _ := newTestGestures(400, tt.zoom)
			cam.Pan(tt.start)
			g.Handle(PointerDown{tt.p})
			g.Handle(PointerMove{tt.p.Add(tt.delta)})

			want := tt.start.Add(tt.delta.Scale(1 / tt.zoom))
			got := cam.Offset()
			if !approxEqual(got.X, want.X, 1e-9) || !approxEqual(got.Y, want.Y, 1e-9) {
				t.Errorf("offset = %v, want %v", got, want)
			}
		})
	}
}

func TestGestureDragIsClamped(t *testing.T) {
	cam, g, _ := newTestGestures(400, 2)
	g.Handle(PointerDown{Vec2{0, 0}})
	g.Handle(PointerMove{Vec2{4000, -4000}})
	if cam.Offset() != (Vec2{100, -100}) {
		t.Errorf("offset = %v, want (100,-100)", cam.Offset())
	}
}

func TestGestureDragLifecycle(t *testing.T) {
	_, g, sink := newTestGestures(400, 2)
	if _, ok := g.State().(GestureIdle); !ok {
		t.Fatalf("initial state = %T", g.State())
	}
	g.Handle(PointerMove{Vec2{10, 10}}) // no drag in progress
	g.Handle(PointerDown{Vec2{10, 10}})
	if _, ok := g.State().(GestureDragging); !ok {
		t.Fatalf("after down: %T", g.State())
	}
	g.Handle(PointerMove{Vec2{20, 20}})
	g.Handle(PointerUp{})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Fatalf("after up: %T", g.State())
	}

	want := []GestureEventType{GestureDragStart, GestureDrag, GestureDragEnd}
	if !equalTypes(sink.types(), want) {
		t.Errorf("events = %v, want %v", sink.types(), want)
	}
}

func TestGesturePointerLeaveEndsDrag(t *testing.T) {
	cam, g, _ := newTestGestures(400, 2)
	g.Handle(PointerDown{Vec2{200, 200}})
	g.Handle(PointerLeave{})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Fatalf("state = %T, want idle", g.State())
	}
	g.Handle(PointerMove{Vec2{300, 300}})
	if cam.Offset() != (Vec2{}) {
		t.Errorf("move after leave panned to %v", cam.Offset())
	}
}

func TestGestureWheel(t *testing.T) {
	cam, g, sink := newTestGestures(400, 1)
	g.Handle(Wheel{DeltaY: -1000})
	if !approxEqual(cam.Zoom(), 1.8, 1e-9) {
		t.Errorf("zoom = %v, want 1.8", cam.Zoom())
	}
	g.Handle(Wheel{DeltaY: 0})
	if len(sink.events) != 1 || sink.events[0].Type != GestureWheel {
		t.Errorf("events = %v", sink.types())
	}
	if !approxEqual(sink.events[0].Zoom, 1.8, 1e-9) {
		t.Errorf("event zoom = %v", sink.events[0].Zoom)
	}

	g.ScrollSensitivity = 0.01
	g.Handle(Wheel{DeltaY: 1e6})
	if cam.Zoom() != DefaultMinZoom {
		t.Errorf("zoom = %v, want min", cam.Zoom())
	}
}

func TestGestureWheelIgnoredWhileDragging(t *testing.T) {
	cam, g, _ := newTestGestures(400, 2)
	g.Handle(PointerDown{Vec2{100, 100}})
	g.Handle(Wheel{DeltaY: -500})
	if cam.Zoom() != 2 {
		t.Errorf("zoom changed during drag: %v", cam.Zoom())
	}
	g.Handle(PointerUp{})
	g.Handle(Wheel{DeltaY: -500})
	if cam.Zoom() == 2 {
		t.Error("wheel after drag had no effect")
	}
}

// The pinch factor is the ratio of squared distances, not of distances:
// doubling the finger spread quadruples the zoom.
func TestGesturePinchUsesSquaredDistanceRatio(t *testing.T) {
	cam, g, sink := newTestGestures(400, 1.5)
	g.Handle(TouchStart{[]Vec2{{150, 200}}})
	g.Handle(TouchStart{[]Vec2{{150, 200}, {250, 200}}})
	g.Handle(TouchMove{[]Vec2{{150, 200}, {250, 200}}}) // D0 = 100
	p, ok := g.State().(GesturePinching)
	if !ok {
		t.Fatalf("state = %T, want pinching", g.State())
	}
	if p.InitialSquaredDistance != 10000 || p.BaseZoom != 1.5 {
		t.Errorf("pinch = %+v", p)
	}
	if cam.Zoom() != 1.5 {
		t.Errorf("establishing move changed zoom to %v", cam.Zoom())
	}

	g.Handle(TouchMove{[]Vec2{{125, 200}, {275, 200}}}) // D1 = 150
	if cam.Zoom() != 2.25*1.5 {
		t.Errorf("zoom = %v, want %v", cam.Zoom(), 2.25*1.5)
	}

	// Relative to the pinch start, not the previous move.
	g.Handle(TouchMove{[]Vec2{{100, 200}, {300, 200}}}) // D1 = 200
	if cam.Zoom() != 4*1.5 {
		t.Errorf("zoom = %v, want %v", cam.Zoom(), 4*1.5)
	}

	g.Handle(TouchEnd{[]Vec2{{100, 200}}})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Errorf("after touch end: %T", g.State())
	}

	want := []GestureEventType{
		GestureDragStart, GestureDragEnd, GesturePinchStart,
		GesturePinch, GesturePinch, GesturePinchEnd,
	}
	if !equalTypes(sink.types(), want) {
		t.Errorf("events = %v, want %v", sink.types(), want)
	}
	if s := sink.events[3].Scale; s != 2.25 {
		t.Errorf("pinch scale = %v, want 2.25", s)
	}
}

func TestGesturePinchClamps(t *testing.T) {
	cam, g, _ := newTestGestures(400, 1)
	g.Handle(TouchMove{[]Vec2{{199, 200}, {201, 200}}})
	g.Handle(TouchMove{[]Vec2{{0, 0}, {400, 400}}})
	if cam.Zoom() != DefaultMaxZoom {
		t.Errorf("zoom = %v, want max", cam.Zoom())
	}
	g.Handle(TouchMove{[]Vec2{{200, 200}, {200.001, 200}}})
	if cam.Zoom() != DefaultMinZoom {
		t.Errorf("zoom = %v, want min", cam.Zoom())
	}
}

func TestGesturePinchZeroDistanceWaits(t *testing.T) {
	cam, g, _ := newTestGestures(400, 1)
	g.Handle(TouchMove{[]Vec2{{200, 200}, {200, 200}}})
	g.Handle(TouchMove{[]Vec2{{190, 200}, {210, 200}}}) // re-establishes at 20
	if cam.Zoom() != 1 {
		t.Errorf("zoom = %v after establishing", cam.Zoom())
	}
	g.Handle(TouchMove{[]Vec2{{180, 200}, {220, 200}}})
	if cam.Zoom() != 4 {
		t.Errorf("zoom = %v, want 4", cam.Zoom())
	}
	for _, v := range []float64{cam.Zoom(), cam.Offset().X, cam.Offset().Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite camera state")
		}
	}
}

func TestGestureTouchCounts(t *testing.T) {
	cam, g, _ := newTestGestures(400, 2)

	// Three touches never start anything.
	three := []Vec2{{10, 10}, {20, 20}, {30, 30}}
	g.Handle(TouchStart{three})
	g.Handle(TouchMove{three})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Fatalf("3 touches: %T", g.State())
	}

	// One touch drags like a mouse.
	g.Handle(TouchStart{[]Vec2{{200, 200}}})
	g.Handle(TouchMove{[]Vec2{{220, 200}}})
	if !approxEqual(cam.Offset().X, 10, 1e-9) {
		t.Errorf("touch drag offset = %v, want x=10", cam.Offset())
	}
	g.Handle(TouchEnd{nil})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Fatalf("after last touch: %T", g.State())
	}

	// A pinch ending with one finger left does not become a drag.
	g.Handle(TouchMove{[]Vec2{{100, 100}, {300, 300}}})
	g.Handle(TouchEnd{[]Vec2{{100, 100}}})
	g.Handle(TouchMove{[]Vec2{{150, 150}}})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Errorf("leftover finger: %T", g.State())
	}
}

func TestGesturePointerDownIgnoredWhilePinching(t *testing.T) {
	_, g, _ := newTestGestures(400, 1)
	g.Handle(TouchMove{[]Vec2{{100, 100}, {300, 300}}})
	g.Handle(PointerDown{Vec2{50, 50}})
	if _, ok := g.State().(GesturePinching); !ok {
		t.Errorf("state = %T, want pinching", g.State())
	}
	g.Handle(PointerUp{})
	if _, ok := g.State().(GestureIdle); !ok {
		t.Errorf("state = %T, want idle", g.State())
	}
}

func TestGestureWithoutSink(t *testing.T) {
	cam := NewCamera(400)
	g := NewGestureController(cam)
	g.Handle(PointerDown{Vec2{1, 1}})
	g.Handle(PointerMove{Vec2{2, 2}})
	g.Handle(PointerUp{})
	g.Handle(Wheel{DeltaY: -100})
	if cam.Zoom() <= 1 {
		t.Errorf("zoom = %v", cam.Zoom())
	}
}
