package trafficview

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// surface is the persistent offscreen canvas the grid is drawn on. It is
// only reallocated when the grid extent changes.
type surface struct {
	image *ebiten.Image
	side  int
}

// ensureSize resizes the surface to side x side pixels if it differs.
// Reports whether a new image was allocated.
func (s *surface) ensureSize(extent float64) bool {
	side := int(math.Ceil(extent))
	if side < 1 {
		side = 1
	}
	if s.image != nil && s.side == side {
		return false
	}
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(side, side)
	s.side = side
	return true
}

// Image returns the underlying *ebiten.Image, nil before the first frame.
func (s *surface) Image() *ebiten.Image {
	return s.image
}

// dispose deallocates the image. The surface reallocates on next use.
func (s *surface) dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
		s.side = 0
	}
}
