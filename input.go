package trafficview

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// wheelPixelsPerStep converts one ebiten wheel notch into browser-style
// pixels, the unit ScrollSensitivity is calibrated for.
const wheelPixelsPerStep = 100

// touchPoint is one active touch in screen pixels.
type touchPoint struct {
	id  ebiten.TouchID
	pos Vec2
}

// inputFrame is a snapshot of raw device state for one tick.
type inputFrame struct {
	cursor  Vec2
	pressed bool // left mouse button
	inside  bool // cursor within the canvas
	touches []touchPoint
	wheelY  float64 // ebiten convention: positive scrolls up
}

// inputPoller turns successive inputFrames into discrete InputEvents, the
// way browser events arrive: press, move, release, leave, touch start,
// move and end, wheel.
type inputPoller struct {
	prevCursor  Vec2
	prevPressed bool
	prevInside  bool
	captured    bool // the current press began inside the canvas
	prevTouches []touchPoint

	touchBuf []touchPoint
}

// readInputFrame reads the current mouse, touch and wheel state. bounds is
// the canvas rectangle in screen pixels.
func (p *inputPoller) readInputFrame(bounds Rect) inputFrame {
	mx, my := ebiten.CursorPosition()
	cursor := Vec2{float64(mx), float64(my)}
	_, wy := ebiten.Wheel()

	p.touchBuf = p.touchBuf[:0]
	ids := ebiten.AppendTouchIDs(nil)
	slices.Sort(ids)
	for _, id := range ids {
		tx, ty := ebiten.TouchPosition(id)
		p.touchBuf = append(p.touchBuf, touchPoint{id: id, pos: Vec2{float64(tx), float64(ty)}})
	}

	return inputFrame{
		cursor:  cursor,
		pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		inside:  bounds.Contains(cursor.X, cursor.Y),
		touches: p.touchBuf,
		wheelY:  wy,
	}
}

// diff appends the events that lead from the previous frame to f.
func (p *inputPoller) diff(f inputFrame, dst []InputEvent) []InputEvent {
	dst = p.diffMouse(f, dst)
	dst = p.diffTouches(f.touches, dst)
	if f.wheelY != 0 {
		dst = append(dst, Wheel{DeltaY: -f.wheelY * wheelPixelsPerStep})
	}
	return dst
}

func (p *inputPoller) diffMouse(f inputFrame, dst []InputEvent) []InputEvent {
	// Touch input also moves the emulated cursor on some platforms.
	if len(f.touches) > 0 || len(p.prevTouches) > 0 {
		p.prevCursor, p.prevPressed, p.prevInside = f.cursor, f.pressed, f.inside
		p.captured = false
		return dst
	}
	switch {
	case f.pressed && !p.prevPressed:
		// A press that starts outside the canvas is not ours to track.
		if f.inside {
			dst = append(dst, PointerDown{Pos: f.cursor})
			p.captured = true
		}
	case !f.pressed && p.prevPressed:
		if p.captured {
			dst = append(dst, PointerUp{})
			p.captured = false
		}
	case f.cursor != p.prevCursor && f.inside:
		dst = append(dst, PointerMove{Pos: f.cursor})
	}
	if p.prevInside && !f.inside {
		dst = append(dst, PointerLeave{})
		p.captured = false
	}
	p.prevCursor = f.cursor
	p.prevPressed = f.pressed
	p.prevInside = f.inside
	return dst
}

func (p *inputPoller) diffTouches(cur []touchPoint, dst []InputEvent) []InputEvent {
	prev := p.prevTouches
	var ended, started, moved bool
	for _, t := range prev {
		if !containsTouch(cur, t.id) {
			ended = true
		}
	}
	for _, t := range cur {
		i := slices.IndexFunc(prev, func(o touchPoint) bool { return o.id == t.id })
		switch {
		case i < 0:
			started = true
		case prev[i].pos != t.pos:
			moved = true
		}
	}

	if ended {
		remaining := make([]Vec2, 0, len(cur))
		for _, t := range cur {
			if containsTouch(prev, t.id) {
				remaining = append(remaining, t.pos)
			}
		}
		dst = append(dst, TouchEnd{Touches: remaining})
	}
	if started {
		dst = append(dst, TouchStart{Touches: touchPositions(cur)})
	}
	if moved {
		dst = append(dst, TouchMove{Touches: touchPositions(cur)})
	}

	p.prevTouches = append(p.prevTouches[:0], cur...)
	return dst
}

func containsTouch(ts []touchPoint, id ebiten.TouchID) bool {
	return slices.ContainsFunc(ts, func(t touchPoint) bool { return t.id == id })
}

func touchPositions(ts []touchPoint) []Vec2 {
	out := make([]Vec2, len(ts))
	for i, t := range ts {
		out[i] = t.pos
	}
	return out
}

// homeRequested reports whether the key that returns the camera home was
// pressed this tick.
func homeRequested() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyHome) || inpututil.IsKeyJustPressed(ebiten.KeyH)
}
