package trafficview

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Zoom defaults.
const (
	DefaultMinZoom = 1.0
	DefaultMaxZoom = 10.0
)

// homeAnim holds the tweens that bring the camera back to its initial view.
type homeAnim struct {
	zoom *gween.Tween
	offX *gween.Tween
	offY *gween.Tween
}

// Camera controls the view into the grid: a zoom about the canvas center
// and a pan offset in world pixels.
//
// The offset is always kept within Size*(Zoom-1)/(2*Zoom) on each axis, so
// the grid edge never scrolls into view. Every mutator re-clamps before it
// returns.
type Camera struct {
	size    float64
	zoom    float64
	offset  Vec2
	minZoom float64
	maxZoom float64

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	home *homeAnim
}

// NewCamera creates a camera for a square canvas of the given side length,
// at zoom 1 with no offset.
func NewCamera(size float64) *Camera {
	return &Camera{
		size:    size,
		zoom:    1,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
		dirty:   true,
	}
}

// Zoom returns the current zoom factor.
func (c *Camera) Zoom() float64 { return c.zoom }

// Offset returns the current pan offset in world pixels.
func (c *Camera) Offset() Vec2 { return c.offset }

// Size returns the side length of the canvas.
func (c *Camera) Size() float64 { return c.size }

// ZoomLimits returns the allowed zoom range.
func (c *Camera) ZoomLimits() (min, max float64) { return c.minZoom, c.maxZoom }

// SetZoomLimits changes the allowed zoom range and re-clamps. A minimum
// below 1 is raised to 1 since the offset bound is only defined for zoom >= 1.
func (c *Camera) SetZoomLimits(min, max float64) {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	c.minZoom, c.maxZoom = min, max
	c.setZoom(c.zoom)
}

// SetSize updates the canvas side length, e.g. after the drawing surface
// was resized, and re-clamps the offset.
func (c *Camera) SetSize(size float64) {
	if size == c.size {
		return
	}
	c.size = size
	c.setOffset(c.offset)
	c.dirty = true
}

// MaxOffset returns the largest allowed |offset| per axis at the current zoom.
func (c *Camera) MaxOffset() float64 {
	return maxOffset(c.size, c.zoom)
}

func maxOffset(size, zoom float64) float64 {
	return size * (zoom - 1) / (2 * zoom)
}

// clampAxis truncates v's magnitude to bound while preserving its sign.
func clampAxis(v, bound float64) float64 {
	return math.Copysign(math.Min(bound, math.Abs(v)), v)
}

// Pan sets the offset to the given world-pixel value, clamped to the
// current bound. Cancels any running home animation.
func (c *Camera) Pan(offset Vec2) {
	c.home = nil
	c.setOffset(offset)
}

// ZoomBy decreases the zoom by delta (positive delta zooms out), clamps
// it and re-clamps the offset. Cancels any running home animation.
func (c *Camera) ZoomBy(delta float64) {
	c.home = nil
	c.setZoom(c.zoom - delta)
}

// ZoomTo sets the zoom to factor*base, clamped. Cancels any running home
// animation.
func (c *Camera) ZoomTo(factor, base float64) {
	c.home = nil
	c.setZoom(factor * base)
}

func (c *Camera) setOffset(o Vec2) {
	bound := c.MaxOffset()
	if math.IsNaN(o.X) {
		o.X = c.offset.X
	}
	if math.IsNaN(o.Y) {
		o.Y = c.offset.Y
	}
	c.offset = Vec2{clampAxis(o.X, bound), clampAxis(o.Y, bound)}
	c.dirty = true
}

func (c *Camera) setZoom(z float64) {
	if math.IsNaN(z) {
		z = c.zoom
	}
	c.zoom = math.Max(c.minZoom, math.Min(z, c.maxZoom))
	// The bound shrinks toward zero as zoom approaches 1.
	c.setOffset(c.offset)
}

// AnimateHome tweens the camera back to zoom 1 and zero offset over
// duration seconds. A nil easeFn uses ease.OutCubic. Advance with Update.
func (c *Camera) AnimateHome(duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	c.home = &homeAnim{
		zoom: gween.New(float32(c.zoom), float32(c.minZoom), duration, easeFn),
		offX: gween.New(float32(c.offset.X), 0, duration, easeFn),
		offY: gween.New(float32(c.offset.Y), 0, duration, easeFn),
	}
}

// Animating reports whether a home animation is in progress.
func (c *Camera) Animating() bool {
	return c.home != nil
}

// Update advances the home animation by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.home == nil {
		return
	}
	z, doneZ := c.home.zoom.Update(dt)
	x, doneX := c.home.offX.Update(dt)
	y, doneY := c.home.offY.Update(dt)
	// Zoom first so the offset is clamped against the new bound.
	c.setZoom(float64(z))
	c.setOffset(Vec2{float64(x), float64(y)})
	if doneZ && doneX && doneY {
		c.home = nil
	}
}

// center returns the canvas center on both axes.
func (c *Camera) center() float64 {
	return c.size / 2
}

// computeViewMatrix recomputes the cached view matrix if dirty.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false
	c.viewMatrix = viewMatrix(c.size, c.zoom, c.offset)
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// ViewMatrix returns the world-to-screen affine matrix [a, b, c, d, tx, ty].
func (c *Camera) ViewMatrix() [6]float64 {
	return c.computeViewMatrix()
}

// WorldToScreen converts world pixels to screen pixels.
func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	c.computeViewMatrix()
	x, y := transformPoint(c.viewMatrix, p.X, p.Y)
	return Vec2{x, y}
}

// ScreenToWorld converts screen pixels to world pixels.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	c.computeViewMatrix()
	x, y := transformPoint(c.invViewMatrix, p.X, p.Y)
	return Vec2{x, y}
}

// ScreenToPan converts a screen point into zoom-scaled pixels that do not
// depend on the current offset. It equals ScreenToWorld(p) + Offset().
// Drag anchors are measured in this space, so moving the pointer by d
// screen pixels moves the offset by d/Zoom.
func (c *Camera) ScreenToPan(p Vec2) Vec2 {
	ctr := c.center()
	return Vec2{(p.X-ctr)/c.zoom + ctr, (p.Y-ctr)/c.zoom + ctr}
}

// VisibleBounds returns the world-space rectangle currently on screen.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	return transformRect(c.invViewMatrix, Rect{Width: c.size, Height: c.size})
}
