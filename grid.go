package trafficview

import (
	"errors"
	"fmt"
)

// Grid defaults matching the simulation that produces snapshots.
const (
	DefaultCellPixels   = 5
	DefaultStreetWidth  = 4
	DefaultBlockSpacing = 51
	DefaultStreetCount  = 5
	DefaultGridSize     = 424
	DefaultFirstStreet  = 100

	// bikeLaneWidening is how many units a bike lane adds to each street.
	bikeLaneWidening = 2
	// bikeLaneOffset is the distance in units from a centerline to its bike lane markings.
	bikeLaneOffset = 2
)

// ErrInvalidGrid is returned by GridConfig.Validate.
var ErrInvalidGrid = errors.New("invalid grid config")

// GridConfig describes the street grid. All distances are in grid units
// except CellPixels, which is the grid-unit to pixel scale.
//
// The street width, first street offset and block spacing are derived from
// the base values given at construction and the bike-lane mode. Use
// WithBikeLane to switch modes; never edit the derived fields individually.
type GridConfig struct {
	CellPixels   float64
	Size         int // grid extent, in units, on both axes
	StreetWidth  int
	BlockSpacing int
	StreetCount  int
	FirstStreet  int
	BikeLane     bool
	BikeBox      bool

	baseStreetWidth  int
	baseBlockSpacing int
	baseFirstStreet  int
}

// NewGridConfig returns the default grid layout for a square grid of size
// units whose first street starts at firstStreet.
func NewGridConfig(size, firstStreet int) GridConfig {
	g := GridConfig{
		CellPixels:       DefaultCellPixels,
		Size:             size,
		StreetCount:      DefaultStreetCount,
		baseStreetWidth:  DefaultStreetWidth,
		baseBlockSpacing: DefaultBlockSpacing,
		baseFirstStreet:  firstStreet,
	}
	return g.WithBikeLane(false)
}

// WithStreets returns a copy of g with different base street dimensions.
// Bike-lane adjustments are reapplied on top of the new base values.
func (g GridConfig) WithStreets(width, spacing, count int) GridConfig {
	g.baseStreetWidth = width
	g.baseBlockSpacing = spacing
	g.StreetCount = count
	return g.WithBikeLane(g.BikeLane)
}

// WithBikeLane returns a copy of g with all bike-lane dependent geometry
// recomputed from the base values. A bike lane widens every street by two
// units, moves the first street one unit toward the origin and takes one
// unit off the spacing between streets.
func (g GridConfig) WithBikeLane(enabled bool) GridConfig {
	g.BikeLane = enabled
	if enabled {
		g.StreetWidth = g.baseStreetWidth + bikeLaneWidening
		g.FirstStreet = g.baseFirstStreet - bikeLaneWidening/2
		g.BlockSpacing = g.baseBlockSpacing - bikeLaneWidening/2
	} else {
		g.StreetWidth = g.baseStreetWidth
		g.FirstStreet = g.baseFirstStreet
		g.BlockSpacing = g.baseBlockSpacing
	}
	return g
}

// Validate checks the invariants of the grid configuration.
func (g GridConfig) Validate() error {
	switch {
	case g.StreetCount < 1:
		return fmt.Errorf("%w: street count %d < 1", ErrInvalidGrid, g.StreetCount)
	case g.StreetWidth < 0:
		return fmt.Errorf("%w: negative street width %d", ErrInvalidGrid, g.StreetWidth)
	case g.BlockSpacing < 0:
		return fmt.Errorf("%w: negative block spacing %d", ErrInvalidGrid, g.BlockSpacing)
	case g.FirstStreet < 0:
		return fmt.Errorf("%w: negative first street offset %d", ErrInvalidGrid, g.FirstStreet)
	case g.CellPixels <= 0:
		return fmt.Errorf("%w: cell pixels %v must be positive", ErrInvalidGrid, g.CellPixels)
	case g.Size <= 0:
		return fmt.Errorf("%w: size %d must be positive", ErrInvalidGrid, g.Size)
	}
	return nil
}

// BlockSize is the repeating distance between the left borders of two
// neighbouring streets.
func (g GridConfig) BlockSize() int {
	return g.StreetWidth + g.BlockSpacing
}

// ExtentPixels is the side length of the square drawing surface.
func (g GridConfig) ExtentPixels() float64 {
	return float64(g.Size) * g.CellPixels
}

// px converts grid units to world pixels.
func (g GridConfig) px(units float64) float64 {
	return units * g.CellPixels
}

// streetOrigin returns the left/top border of street i in grid units.
func (g GridConfig) streetOrigin(i int) int {
	return g.FirstStreet + i*g.BlockSize()
}

// StreetBorders returns the left (top) and right (bottom) border positions
// of street i in world pixels.
func (g GridConfig) StreetBorders(i int) (left, right float64) {
	o := g.streetOrigin(i)
	return g.px(float64(o)), g.px(float64(o + g.StreetWidth))
}

// Centerline returns the position of street i's dashed lane divider in world pixels.
func (g GridConfig) Centerline(i int) float64 {
	return g.px(float64(g.streetOrigin(i)) + float64(g.StreetWidth)/2)
}

// BikeLaneLines returns the positions of street i's two bike lane markings.
// ok is false when bike lanes are disabled.
func (g GridConfig) BikeLaneLines(i int) (a, b float64, ok bool) {
	if !g.BikeLane {
		return 0, 0, false
	}
	c := g.Centerline(i)
	return c - g.px(bikeLaneOffset), c + g.px(bikeLaneOffset), true
}

// IntersectionOrigin returns the top-left corner of intersection (i, j) in grid units.
func (g GridConfig) IntersectionOrigin(i, j int) (x, y int) {
	return g.streetOrigin(i), g.streetOrigin(j)
}

// Intersections returns every intersection square in world pixels,
// ordered by i, then j.
func (g GridConfig) Intersections() []Rect {
	side := g.px(float64(g.StreetWidth))
	out := make([]Rect, 0, g.StreetCount*g.StreetCount)
	for i := 0; i < g.StreetCount; i++ {
		for j := 0; j < g.StreetCount; j++ {
			x, y := g.IntersectionOrigin(i, j)
			out = append(out, Rect{X: g.px(float64(x)), Y: g.px(float64(y)), Width: side, Height: side})
		}
	}
	return out
}
