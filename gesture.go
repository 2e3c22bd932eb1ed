package trafficview

// DefaultScrollSensitivity converts wheel delta (in browser-style pixels)
// to a zoom change.
const DefaultScrollSensitivity = 0.0008

// --- Gesture state ---

// GestureState is the state of a GestureController. It is one of
// GestureIdle, GestureDragging or GesturePinching.
type GestureState interface {
	gestureState()
}

// GestureIdle means no gesture is in progress.
type GestureIdle struct{}

// GestureDragging is a single-pointer pan. Anchor is measured in the
// camera's pan space (see Camera.ScreenToPan) minus the offset at press time.
type GestureDragging struct {
	Anchor Vec2
}

// GesturePinching is a two-touch zoom. InitialSquaredDistance is recorded
// on the first move; later moves zoom to the ratio of squared distances
// times BaseZoom.
type GesturePinching struct {
	InitialSquaredDistance float64
	BaseZoom               float64
	Established            bool
}

func (GestureIdle) gestureState()     {}
func (GestureDragging) gestureState() {}
func (GesturePinching) gestureState() {}

// --- Inputs ---

// InputEvent is a raw input delivered to GestureController.Handle.
type InputEvent interface {
	inputEvent()
}

// PointerDown is a mouse button press at a screen position.
type PointerDown struct{ Pos Vec2 }

// PointerMove is a mouse move to a screen position.
type PointerMove struct{ Pos Vec2 }

// PointerUp is a mouse button release.
type PointerUp struct{}

// PointerLeave is the pointer leaving the canvas; treated as a release.
type PointerLeave struct{}

// TouchStart carries all touches active after a new touch began.
type TouchStart struct{ Touches []Vec2 }

// TouchMove carries all active touches after any of them moved.
type TouchMove struct{ Touches []Vec2 }

// TouchEnd carries the touches that remain after one or more ended.
type TouchEnd struct{ Touches []Vec2 }

// Wheel is a scroll input. Positive DeltaY zooms out.
type Wheel struct{ DeltaY float64 }

func (PointerDown) inputEvent()  {}
func (PointerMove) inputEvent()  {}
func (PointerUp) inputEvent()    {}
func (PointerLeave) inputEvent() {}
func (TouchStart) inputEvent()   {}
func (TouchMove) inputEvent()    {}
func (TouchEnd) inputEvent()     {}
func (Wheel) inputEvent()        {}

// --- Outputs ---

// GestureEventType identifies a camera-affecting gesture transition.
type GestureEventType uint8

const (
	GestureDragStart  GestureEventType = iota // Idle -> Dragging
	GestureDrag                               // offset changed by a drag
	GestureDragEnd                            // Dragging -> Idle or Pinching
	GesturePinchStart                         // entered Pinching
	GesturePinch                              // zoom changed by a pinch
	GesturePinchEnd                           // Pinching -> Idle
	GestureWheel                              // zoom changed by the wheel
)

// GestureEvent describes the camera after a gesture transition.
type GestureEvent struct {
	Type    GestureEventType
	Zoom    float64
	OffsetX float64
	OffsetY float64
	// Scale is the pinch factor relative to the pinch start (GesturePinch only).
	Scale float64
}

// EventSink receives gesture events, e.g. to bridge them into an ECS.
type EventSink interface {
	EmitGesture(event GestureEvent)
}

// --- Controller ---

// GestureController turns raw pointer, touch and wheel input into camera
// pans and zooms. It is not safe for concurrent use; feed it from the
// goroutine that renders.
type GestureController struct {
	camera *Camera
	state  GestureState
	sink   EventSink

	// ScrollSensitivity scales Wheel.DeltaY into a zoom delta.
	ScrollSensitivity float64
}

// NewGestureController creates an idle controller driving cam.
func NewGestureController(cam *Camera) *GestureController {
	return &GestureController{
		camera:            cam,
		state:             GestureIdle{},
		ScrollSensitivity: DefaultScrollSensitivity,
	}
}

// State returns the current gesture state.
func (g *GestureController) State() GestureState {
	return g.state
}

// SetEventSink sets the optional receiver of gesture events.
func (g *GestureController) SetEventSink(sink EventSink) {
	g.sink = sink
}

// Handle dispatches a raw input event.
func (g *GestureController) Handle(ev InputEvent) {
	switch e := ev.(type) {
	case PointerDown:
		g.PointerDown(e.Pos)
	case PointerMove:
		g.PointerMove(e.Pos)
	case PointerUp:
		g.PointerUp()
	case PointerLeave:
		g.PointerUp()
	case TouchStart:
		g.TouchStart(e.Touches)
	case TouchMove:
		g.TouchMove(e.Touches)
	case TouchEnd:
		g.TouchEnd(e.Touches)
	case Wheel:
		g.Wheel(e.DeltaY)
	}
}

// PointerDown starts a drag anchored at the given screen point. Ignored
// while pinching.
func (g *GestureController) PointerDown(p Vec2) {
	if _, ok := g.state.(GesturePinching); ok {
		return
	}
	anchor := g.camera.ScreenToPan(p).Sub(g.camera.Offset())
	g.state = GestureDragging{Anchor: anchor}
	g.emit(GestureDragStart, 0)
}

// PointerMove pans the camera while dragging.
func (g *GestureController) PointerMove(p Vec2) {
	d, ok := g.state.(GestureDragging)
	if !ok {
		return
	}
	g.camera.Pan(g.camera.ScreenToPan(p).Sub(d.Anchor))
	g.emit(GestureDrag, 0)
}

// PointerUp ends any gesture and forgets the pinch reference.
func (g *GestureController) PointerUp() {
	switch g.state.(type) {
	case GestureDragging:
		g.state = GestureIdle{}
		g.emit(GestureDragEnd, 0)
	case GesturePinching:
		g.state = GestureIdle{}
		g.emit(GesturePinchEnd, 0)
	}
}

// TouchStart begins a drag when exactly one touch is down. Further
// touches are ignored until they move.
func (g *GestureController) TouchStart(touches []Vec2) {
	if len(touches) == 1 {
		g.PointerDown(touches[0])
	}
}

// TouchMove pans with one touch and pinches with two. Other counts are ignored.
func (g *GestureController) TouchMove(touches []Vec2) {
	switch len(touches) {
	case 1:
		g.PointerMove(touches[0])
	case 2:
		g.pinch(touches[0], touches[1])
	}
}

// TouchEnd ends a drag when at most one touch remains and a pinch when
// fewer than two remain.
func (g *GestureController) TouchEnd(remaining []Vec2) {
	switch g.state.(type) {
	case GestureDragging:
		if len(remaining) <= 1 {
			g.PointerUp()
		}
	case GesturePinching:
		if len(remaining) < 2 {
			g.PointerUp()
		}
	}
}

// Wheel zooms by deltaY*ScrollSensitivity. Ignored while dragging so a
// combined trackpad gesture cannot pan and zoom in the same frame.
func (g *GestureController) Wheel(deltaY float64) {
	if _, ok := g.state.(GestureDragging); ok {
		return
	}
	if deltaY == 0 {
		return
	}
	g.camera.ZoomBy(deltaY * g.ScrollSensitivity)
	g.emit(GestureWheel, 0)
}

// pinch advances the two-touch zoom. The ratio of squared distances is
// used as the zoom factor, which avoids a square root per move; the zoom
// therefore grows with the square of the finger spread.
func (g *GestureController) pinch(a, b Vec2) {
	if _, ok := g.state.(GestureDragging); ok {
		g.state = GestureIdle{}
		g.emit(GestureDragEnd, 0)
	}
	p, ok := g.state.(GesturePinching)
	if !ok {
		p = GesturePinching{BaseZoom: g.camera.Zoom()}
		g.state = p
		g.emit(GesturePinchStart, 0)
	}

	dx, dy := a.X-b.X, a.Y-b.Y
	dist2 := dx*dx + dy*dy

	if !p.Established {
		p.InitialSquaredDistance = dist2
		p.Established = dist2 > 0
		g.state = p
		return
	}

	scale := dist2 / p.InitialSquaredDistance
	g.camera.ZoomTo(scale, p.BaseZoom)
	g.emit(GesturePinch, scale)
}

func (g *GestureController) emit(t GestureEventType, scale float64) {
	if g.sink == nil {
		return
	}
	off := g.camera.Offset()
	g.sink.EmitGesture(GestureEvent{
		Type:    t,
		Zoom:    g.camera.Zoom(),
		OffsetX: off.X,
		OffsetY: off.Y,
		Scale:   scale,
	})
}
