package trafficview

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at submission time.
type Color struct {
	R, G, B, A float64
}

// Colors used by the grid renderer.
var (
	ColorStreet   = Color{0.4, 0.4, 0.4, 1}       // #666
	ColorBikeLane = Color{0.839, 0.49, 0, 1}      // #d67d00
	ColorCar      = Color{0, 0, 1, 1}             // blue
	ColorBike     = Color{1, 0.647, 0, 1}         // orange
	ColorRed      = Color{1, 0, 0, 1}             // stop
	ColorGreen    = Color{0, 0.502, 0, 1}         // go
	ColorPaper    = Color{1, 1, 1, 1}             // background behind cleared areas
	ColorHUD      = Color{0.1, 0.1, 0.1, 0.85}    // HUD text
	ColorHUDPanel = Color{0.95, 0.95, 0.95, 0.75} // HUD backdrop
)

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions and offsets.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the rectangle's center point.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Segment is a straight line between two points.
type Segment struct {
	A, B Vec2
}

// VehicleType distinguishes how a vehicle is drawn.
type VehicleType uint8

const (
	VehicleCar  VehicleType = iota // 2x2 units
	VehicleBike                    // 1x1 unit
)

func (t VehicleType) String() string {
	switch t {
	case VehicleCar:
		return "car"
	case VehicleBike:
		return "bike"
	default:
		return "unknown"
	}
}

// Direction is a vehicle's direction of travel.
type Direction uint8

const (
	DirUp    Direction = iota // toward y = 0
	DirRight                  // toward increasing x
	DirDown                   // toward increasing y
	DirLeft                   // toward x = 0
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "unknown"
	}
}

// LightState selects which traffic axis shows red. The two axes are always
// in opposite states.
type LightState uint8

const (
	// LightVerticalRed stops up/down traffic; left/right traffic has green.
	LightVerticalRed LightState = iota
	// LightHorizontalRed stops left/right traffic; up/down traffic has green.
	LightHorizontalRed
)
