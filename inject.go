package trafficview

// Injected input uses screen coordinates, the same space as real mouse and
// touch input, so scripted gestures exercise exactly the paths a user does.
// One queued event is consumed per Update; while the queue is non-empty,
// real device input is ignored.

// InjectPress queues a pointer press at (x, y).
func (v *Viewer) InjectPress(x, y float64) {
	v.injectQueue = append(v.injectQueue, PointerDown{Pos: Vec2{x, y}})
}

// InjectMove queues a pointer move to (x, y).
func (v *Viewer) InjectMove(x, y float64) {
	v.injectQueue = append(v.injectQueue, PointerMove{Pos: Vec2{x, y}})
}

// InjectRelease queues a pointer release.
func (v *Viewer) InjectRelease() {
	v.injectQueue = append(v.injectQueue, PointerUp{})
}

// InjectLeave queues the pointer leaving the canvas.
func (v *Viewer) InjectLeave() {
	v.injectQueue = append(v.injectQueue, PointerLeave{})
}

// InjectWheel queues a wheel event. Positive deltaY zooms out.
func (v *Viewer) InjectWheel(deltaY float64) {
	v.injectQueue = append(v.injectQueue, Wheel{DeltaY: deltaY})
}

// InjectDrag queues a full drag: press at from, frames-2 interpolated
// moves, a final move to to, then release. Consumes frames+1 frames;
// frames below 2 is raised to 2.
func (v *Viewer) InjectDrag(from, to Vec2, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(from.X, from.Y)
	steps := frames - 1
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		v.InjectMove(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t)
	}
	v.InjectRelease()
}

// InjectPinch queues a two-finger pinch centred on center, horizontal,
// with the fingers startDist apart growing linearly to endDist over frames
// moves. Touches go down one at a time and lift one at a time, as on a
// real screen.
func (v *Viewer) InjectPinch(center Vec2, startDist, endDist float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	pair := func(d float64) []Vec2 {
		return []Vec2{{center.X - d/2, center.Y}, {center.X + d/2, center.Y}}
	}
	first := pair(startDist)
	v.injectQueue = append(v.injectQueue,
		TouchStart{Touches: first[:1]},
		TouchStart{Touches: first},
	)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		v.injectQueue = append(v.injectQueue, TouchMove{Touches: pair(startDist + (endDist-startDist)*t)})
	}
	last := pair(endDist)
	v.injectQueue = append(v.injectQueue,
		TouchEnd{Touches: last[:1]},
		TouchEnd{},
	)
}

// popInjected removes and returns the oldest queued event.
func (v *Viewer) popInjected() (InputEvent, bool) {
	if len(v.injectQueue) == 0 {
		return nil, false
	}
	ev := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue[len(v.injectQueue)-1] = nil
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]
	return ev, true
}
